package dto

import "errors"

// Custom errors
var (
	ErrMissingFilingStatus = errors.New("filing_status is required")
	ErrNoDocuments         = errors.New("at least one document file is required")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ProcessingResult is the final response structure: every per-document parse
// result, the computed tax summary, and the filled Form 1040 (base64, empty
// when form filling was unavailable).
type ProcessingResult struct {
	ParsedForms     []ParsedForm `json:"parsed_forms"`
	TaxSummary      TaxSummary   `json:"tax_summary"`
	FilledPDFBase64 string       `json:"filled_pdf_base64"`
	ProcessedAt     string       `json:"processed_at"`
}
