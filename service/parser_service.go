package service

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/taxproc/tax-document-processor/dto"
)

// minUsableText is the threshold below which a page's embedded text layer is
// treated as absent and OCR takes over.
const minUsableText = 20

// OCRClient turns a page image into plain text. Empty output means "no
// signal", not an error.
type OCRClient interface {
	ExtractTextFromImage(img image.Image) (string, error)
}

// FieldExtractor asks an external model to fill the requested field labels
// from extracted page text.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, docType dto.DocumentType, defs []dto.FieldDefinition, contextText string) (map[string]string, error)
}

// ParserService sequences classification, page selection, page isolation, and
// field extraction for each uploaded document.
type ParserService struct {
	pdfProcessor PDFProcessor
	ocrClient    OCRClient
	extractor    FieldExtractor
	concurrency  int
	logger       *slog.Logger
}

func NewParserService(pdfProcessor PDFProcessor, ocrClient OCRClient, extractor FieldExtractor, concurrency int, logger *slog.Logger) *ParserService {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserService{
		pdfProcessor: pdfProcessor,
		ocrClient:    ocrClient,
		extractor:    extractor,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// ProcessAll runs the extraction pipeline over every uploaded file with
// bounded concurrency. Results keep the input order, and a failed document
// never fails the batch: it comes back as an Error-typed ParsedForm.
func (s *ParserService) ProcessAll(ctx context.Context, files []*multipart.FileHeader) []dto.ParsedForm {
	results := make([]dto.ParsedForm, len(files))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, fileHeader := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, fileHeader *multipart.FileHeader) {
			defer wg.Done()
			defer func() { <-sem }()

			data, err := readUpload(fileHeader)
			if err != nil {
				s.logger.Error("parser.read_failed", "file", fileHeader.Filename, "error", err)
				results[i] = errorForm(fileHeader.Filename, err)
				return
			}
			results[i] = s.ProcessDocument(ctx, fileHeader.Filename, data)
		}(i, fileHeader)
	}

	wg.Wait()
	return results
}

// ProcessDocument classifies one document, locates its data-bearing page, and
// extracts the per-type fields. It never returns an error: every failure mode
// maps onto a typed ParsedForm so one bad document cannot sink a filing.
func (s *ParserService) ProcessDocument(ctx context.Context, filename string, data []byte) (form dto.ParsedForm) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("parser.panic", "file", filename, "panic", r)
			form = errorForm(filename, fmt.Errorf("document processing panic: %v", r))
		}
	}()

	form = dto.ParsedForm{
		File:         filename,
		DocumentType: dto.DocTypeError,
		ParsedFields: map[string]string{},
	}
	if s.extractor == nil || len(data) == 0 {
		return form
	}

	pages, err := s.collectPageTexts(data)
	if err != nil {
		// A corrupt document must not be partially classified.
		s.logger.Warn("parser.page_text_failed", "file", filename, "error", err)
		form.DocumentType = dto.DocTypeUnknown
		return form
	}

	docType := ClassifyDocument(pages)
	if docType == dto.DocTypeUnknown {
		s.logger.Info("parser.unclassified", "file", filename)
		form.DocumentType = dto.DocTypeUnknown
		return form
	}
	form.DocumentType = docType

	pageNumber, found := FindRelevantPage(docType, pages)
	if !found {
		s.logger.Info("parser.no_relevant_page", "file", filename, "doc_type", docType)
		return form
	}
	s.logger.Info("parser.page_selected", "file", filename, "doc_type", docType, "page", pageNumber)

	pagePath := filepath.Join(os.TempDir(), fmt.Sprintf("tax-page-%s.pdf", uuid.New().String()))
	defer func() {
		if err := os.Remove(pagePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("parser.temp_cleanup_failed", "path", pagePath, "error", err)
		}
	}()
	if err := s.pdfProcessor.IsolatePage(data, pageNumber, pagePath); err != nil {
		s.logger.Error("parser.isolate_failed", "file", filename, "page", pageNumber, "error", err)
		return errorForm(filename, err)
	}

	contextText := s.pageContext(pagePath, data, pageNumber)
	if strings.TrimSpace(contextText) == "" {
		s.logger.Warn("parser.no_context", "file", filename, "page", pageNumber)
		return form
	}

	fields, err := s.extractor.ExtractFields(ctx, docType, dto.FormFieldDefs[docType], contextText)
	if err != nil {
		s.logger.Error("parser.field_extraction_failed", "file", filename, "doc_type", docType, "error", err)
		return form
	}
	form.ParsedFields = fields
	return form
}

// collectPageTexts acquires page-indexed text for the whole document: the
// embedded text layer where present, OCR on the page raster otherwise.
func (s *ParserService) collectPageTexts(data []byte) ([]PageText, error) {
	pageCount, err := s.pdfProcessor.PageCount(data)
	if err != nil {
		return nil, err
	}

	pages := make([]PageText, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		text, err := s.pdfProcessor.PageText(data, i)
		if err != nil {
			return nil, err
		}
		if len(strings.TrimSpace(text)) < minUsableText && s.ocrClient != nil {
			text = s.ocrPage(data, i)
		}
		pages = append(pages, PageText{Number: i, Text: text})
	}
	return pages, nil
}

// ocrPage OCRs the raster images of one page. Failures degrade to an empty
// page, never to a document-level error.
func (s *ParserService) ocrPage(data []byte, pageNumber int) string {
	images, err := s.pdfProcessor.RenderPageImages(data, pageNumber)
	if err != nil {
		s.logger.Warn("parser.render_failed", "page", pageNumber, "error", err)
		return ""
	}

	var combined strings.Builder
	for _, img := range images {
		text, err := s.ocrClient.ExtractTextFromImage(img)
		if err != nil {
			s.logger.Warn("parser.ocr_failed", "page", pageNumber, "error", err)
			continue
		}
		combined.WriteString(text)
		combined.WriteString("\n")
	}
	return combined.String()
}

// pageContext extracts the text of the isolated page for field extraction:
// layout-ordered text first, OCR fallback for scans.
func (s *ParserService) pageContext(pagePath string, data []byte, pageNumber int) string {
	text, err := s.pdfProcessor.LayoutText(pagePath)
	if err != nil {
		s.logger.Warn("parser.layout_text_failed", "path", pagePath, "error", err)
	}
	if len(strings.TrimSpace(text)) < minUsableText && s.ocrClient != nil {
		text = s.ocrPage(data, pageNumber)
	}
	return text
}

func errorForm(filename string, err error) dto.ParsedForm {
	return dto.ParsedForm{
		File:         filename,
		DocumentType: dto.DocTypeError,
		ParsedFields: map[string]string{"error": err.Error()},
	}
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fileHeader.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileHeader.Filename, err)
	}
	return data, nil
}
