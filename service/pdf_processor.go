package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFProcessor provides the page-level PDF operations the extraction pipeline
// needs: counting pages, reading the embedded text layer, rasterizing a page
// for OCR, isolating a single page, and layout-ordered text extraction.
type PDFProcessor interface {
	PageCount(pdfData []byte) (int, error)
	PageText(pdfData []byte, pageNumber int) (string, error)
	RenderPageImages(pdfData []byte, pageNumber int) ([]image.Image, error)
	IsolatePage(pdfData []byte, pageNumber int, outPath string) error
	LayoutText(path string) (string, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

func (p *pdfProcessor) PageCount(pdfData []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	return r.NumPage(), nil
}

// PageText returns the embedded text layer of one page (1-based). Scanned
// documents typically yield an empty string here; callers fall back to OCR.
func (p *pdfProcessor) PageText(pdfData []byte, pageNumber int) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	if pageNumber < 1 || pageNumber > r.NumPage() {
		return "", fmt.Errorf("page %d out of range (1-%d)", pageNumber, r.NumPage())
	}

	page := r.Page(pageNumber)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", nil
	}
	return text, nil
}

// RenderPageImages extracts the embedded images of one page. For a scanned
// document that is the full page raster, which is what OCR needs.
func (p *pdfProcessor) RenderPageImages(pdfData []byte, pageNumber int) ([]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "pdf_page_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	tempFile, err := os.CreateTemp("", "doc-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(pdfData); err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}
	tempFile.Close()

	conf := model.NewDefaultConfiguration()
	pages := []string{strconv.Itoa(pageNumber)}
	if err := api.ExtractImagesFile(tempFile.Name(), tempDir, pages, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %w", err)
	}

	var images []image.Image
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		imgFile, err := os.Open(filepath.Join(tempDir, entry.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// IsolatePage writes a one-page PDF containing only the given page to
// outPath. This bounds what the downstream extractor sees and avoids
// cross-page field bleed.
func (p *pdfProcessor) IsolatePage(pdfData []byte, pageNumber int, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create page file: %w", err)
	}
	defer out.Close()

	conf := model.NewDefaultConfiguration()
	pages := []string{strconv.Itoa(pageNumber)}
	if err := api.Trim(bytes.NewReader(pdfData), out, pages, conf); err != nil {
		return fmt.Errorf("failed to isolate page %d: %w", pageNumber, err)
	}
	return nil
}

// LayoutText extracts text from a (single page) PDF preserving row order, so
// box labels and their values stay adjacent in the output.
func (p *pdfProcessor) LayoutText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				textBuilder.WriteString(word.S)
				textBuilder.WriteString(" ")
			}
			textBuilder.WriteString("\n")
		}
	}
	return textBuilder.String(), nil
}
