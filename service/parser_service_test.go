package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxproc/tax-document-processor/dto"
)

// fakePDFProcessor serves page text keyed by raw document content, so tests
// can describe a "PDF" as a plain slice of page strings.
type fakePDFProcessor struct {
	pages    map[string][]string
	countErr error
	isolated []string
}

func (f *fakePDFProcessor) PageCount(data []byte) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.pages[string(data)]), nil
}

func (f *fakePDFProcessor) PageText(data []byte, pageNumber int) (string, error) {
	return f.pages[string(data)][pageNumber-1], nil
}

func (f *fakePDFProcessor) RenderPageImages(data []byte, pageNumber int) ([]image.Image, error) {
	return nil, errors.New("no raster available")
}

func (f *fakePDFProcessor) IsolatePage(data []byte, pageNumber int, outPath string) error {
	f.isolated = append(f.isolated, outPath)
	return os.WriteFile(outPath, []byte(f.pages[string(data)][pageNumber-1]), 0o600)
}

func (f *fakePDFProcessor) LayoutText(path string) (string, error) {
	b, err := os.ReadFile(path)
	return string(b), err
}

type fakeExtractor struct {
	fields      map[string]string
	err         error
	calls       int
	lastDocType dto.DocumentType
	lastContext string
}

func (f *fakeExtractor) ExtractFields(_ context.Context, docType dto.DocumentType, _ []dto.FieldDefinition, contextText string) (map[string]string, error) {
	f.calls++
	f.lastDocType = docType
	f.lastContext = contextText
	if f.err != nil {
		return nil, f.err
	}
	return f.fields, nil
}

const (
	intFormPage  = "Form 1099-INT 1 Interest income $450.00 PAYER'S TIN 12-3456789 2 Early withdrawal penalty $0.00"
	coverPage    = "Mailed from your bank. Important tax documents enclosed. Please retain for your records."
	newsletterPg = "Community newsletter: the downtown branch now opens at nine on Saturdays."
)

func newTestParser(pdfProc PDFProcessor, extractor FieldExtractor) *ParserService {
	return NewParserService(pdfProc, nil, extractor, 2, nil)
}

func TestProcessDocumentNoExtractorAvailable(t *testing.T) {
	svc := newTestParser(&fakePDFProcessor{}, nil)

	form := svc.ProcessDocument(context.Background(), "w2.pdf", []byte("anything"))

	assert.Equal(t, dto.DocTypeError, form.DocumentType)
	assert.Empty(t, form.ParsedFields)
}

func TestProcessDocumentEmptyFile(t *testing.T) {
	svc := newTestParser(&fakePDFProcessor{}, &fakeExtractor{})

	form := svc.ProcessDocument(context.Background(), "empty.pdf", nil)

	assert.Equal(t, dto.DocTypeError, form.DocumentType)
}

func TestProcessDocumentCorruptFileIsUnknown(t *testing.T) {
	pdfProc := &fakePDFProcessor{countErr: errors.New("not a pdf")}
	extractor := &fakeExtractor{}
	svc := newTestParser(pdfProc, extractor)

	form := svc.ProcessDocument(context.Background(), "corrupt.pdf", []byte("junk"))

	assert.Equal(t, dto.DocTypeUnknown, form.DocumentType)
	assert.Empty(t, form.ParsedFields)
	assert.Zero(t, extractor.calls)
}

// A document with no matching cue anywhere returns Unknown without page
// selection or extraction ever running.
func TestProcessDocumentUnknownShortCircuits(t *testing.T) {
	doc := []byte("doc")
	pdfProc := &fakePDFProcessor{pages: map[string][]string{
		"doc": {newsletterPg, coverPage},
	}}
	extractor := &fakeExtractor{}
	svc := newTestParser(pdfProc, extractor)

	form := svc.ProcessDocument(context.Background(), "misc.pdf", doc)

	assert.Equal(t, dto.DocTypeUnknown, form.DocumentType)
	assert.Empty(t, form.ParsedFields)
	assert.Zero(t, extractor.calls)
	assert.Empty(t, pdfProc.isolated)
}

// A header-only match classifies the document, but with no data-bearing page
// the type comes back with empty fields and extraction is skipped.
func TestProcessDocumentRelevantPageNotFound(t *testing.T) {
	doc := []byte("doc")
	pdfProc := &fakePDFProcessor{pages: map[string][]string{
		"doc": {"Form W-2 attached separately, see the following envelope for the statement itself."},
	}}
	extractor := &fakeExtractor{}
	svc := newTestParser(pdfProc, extractor)

	form := svc.ProcessDocument(context.Background(), "w2-cover.pdf", doc)

	assert.Equal(t, dto.DocTypeW2, form.DocumentType)
	assert.Empty(t, form.ParsedFields)
	assert.Zero(t, extractor.calls)
}

func TestProcessDocumentHappyPath(t *testing.T) {
	doc := []byte("doc")
	pdfProc := &fakePDFProcessor{pages: map[string][]string{
		"doc": {coverPage, intFormPage},
	}}
	extractor := &fakeExtractor{fields: map[string]string{
		dto.FieldIntIncome:   "450.00",
		dto.FieldIntPenalty:  "N/A",
		dto.FieldIntWithheld: "N/A",
	}}
	svc := newTestParser(pdfProc, extractor)

	form := svc.ProcessDocument(context.Background(), "interest.pdf", doc)

	assert.Equal(t, dto.DocType1099INT, form.DocumentType)
	assert.Equal(t, "450.00", form.ParsedFields[dto.FieldIntIncome])
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, dto.DocType1099INT, extractor.lastDocType)
	// The extractor only ever sees the isolated page, not the cover sheet.
	assert.Contains(t, extractor.lastContext, "Interest income")
	assert.NotContains(t, extractor.lastContext, "tax documents enclosed")

	// The single-page temp artifact is removed on the way out.
	require.Len(t, pdfProc.isolated, 1)
	_, err := os.Stat(pdfProc.isolated[0])
	assert.True(t, os.IsNotExist(err))
}

func TestProcessDocumentExtractorFailureKeepsType(t *testing.T) {
	doc := []byte("doc")
	pdfProc := &fakePDFProcessor{pages: map[string][]string{
		"doc": {intFormPage},
	}}
	extractor := &fakeExtractor{err: errors.New("model timeout")}
	svc := newTestParser(pdfProc, extractor)

	form := svc.ProcessDocument(context.Background(), "interest.pdf", doc)

	assert.Equal(t, dto.DocType1099INT, form.DocumentType)
	assert.Empty(t, form.ParsedFields)

	require.Len(t, pdfProc.isolated, 1)
	_, err := os.Stat(pdfProc.isolated[0])
	assert.True(t, os.IsNotExist(err), "temp artifact must be removed on the failure path too")
}

func TestProcessAllKeepsOrderAndIsolatesFailures(t *testing.T) {
	pdfProc := &fakePDFProcessor{pages: map[string][]string{
		"int-doc": {intFormPage},
	}}
	extractor := &fakeExtractor{fields: map[string]string{dto.FieldIntIncome: "450.00"}}
	svc := newTestParser(pdfProc, extractor)

	files := buildMultipartFiles(t, map[string]string{
		"a-interest.pdf": "int-doc",
		"b-empty.pdf":    "",
	})

	results := svc.ProcessAll(context.Background(), files)

	require.Len(t, results, 2)
	byName := map[string]dto.ParsedForm{}
	for i, fh := range files {
		assert.Equal(t, fh.Filename, results[i].File, "results must keep input order")
		byName[results[i].File] = results[i]
	}
	assert.Equal(t, dto.DocType1099INT, byName["a-interest.pdf"].DocumentType)
	assert.Equal(t, dto.DocTypeError, byName["b-empty.pdf"].DocumentType)
}

// buildMultipartFiles round-trips file contents through a real multipart form
// so tests get genuine *multipart.FileHeader values.
func buildMultipartFiles(t *testing.T, contents map[string]string) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range contents {
		part, err := writer.CreateFormFile("files[]", name)
		require.NoError(t, err)
		_, err = fmt.Fprint(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["files[]"]
}
