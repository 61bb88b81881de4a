package handler

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taxproc/tax-document-processor/dto"
	"github.com/taxproc/tax-document-processor/service"
)

type FilingHandler struct {
	parserService *service.ParserService
	templatePath  string
	logger        *slog.Logger
}

func NewFilingHandler(parserService *service.ParserService, templatePath string, logger *slog.Logger) *FilingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilingHandler{
		parserService: parserService,
		templatePath:  templatePath,
		logger:        logger,
	}
}

// ProcessForms handles the POST /filings/process endpoint: parse every
// uploaded document, aggregate the extracted amounts, compute the tax
// summary, and return it together with a filled Form 1040.
func (h *FilingHandler) ProcessForms(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	request := &dto.ProcessFormsRequest{
		FilingStatus: c.PostForm("filing_status"),
		Files:        form.File["files[]"],
	}
	request.NumQualifyingChildren, err = parseCount(c.DefaultPostForm("num_qualifying_children", "0"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "num_qualifying_children must be a non-negative integer", err)
		return
	}
	request.NumOtherDependents, err = parseCount(c.DefaultPostForm("num_other_dependents", "0"))
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "num_other_dependents must be a non-negative integer", err)
		return
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	// Reject an unusable filing status before spending OCR/AI calls on the
	// documents. The tax computation cannot proceed without it.
	if !service.ValidFilingStatus(request.FilingStatus) {
		err := &service.InvalidFilingStatusError{Status: request.FilingStatus}
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	h.logger.Info("filing.process.start", "files", len(request.Files), "filing_status", request.FilingStatus)

	parsed := h.parserService.ProcessAll(c.Request.Context(), request.Files)

	inputs := service.AggregateTaxInputs(parsed, request.FilingStatus, request.NumQualifyingChildren, request.NumOtherDependents)
	summary, err := service.CalculateTaxLiability(inputs)
	if err != nil {
		var statusErr *service.InvalidFilingStatusError
		if errors.As(err, &statusErr) {
			h.sendError(c, http.StatusBadRequest, statusErr.Error(), err)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Tax calculation failed", err)
		return
	}

	// Form filling is best-effort: a missing template must not block the
	// computed summary.
	var pdfBase64 string
	w2Fields := firstFieldsOfType(parsed, dto.DocTypeW2)
	if filled, err := service.Fill1040(h.templatePath, summary, w2Fields, request.FilingStatus); err != nil {
		h.logger.Warn("filing.form_fill_failed", "error", err)
	} else {
		pdfBase64 = base64.StdEncoding.EncodeToString(filled)
	}

	h.logger.Info("filing.process.done", "files", len(parsed), "tax_due", summary.TaxDue, "refund", summary.Refund)

	c.JSON(http.StatusOK, dto.ProcessingResult{
		ParsedForms:     parsed,
		TaxSummary:      *summary,
		FilledPDFBase64: pdfBase64,
		ProcessedAt:     time.Now().Format(time.RFC3339),
	})
}

func firstFieldsOfType(parsed []dto.ParsedForm, docType dto.DocumentType) map[string]string {
	for _, form := range parsed {
		if form.DocumentType == docType {
			return form.ParsedFields
		}
	}
	return nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("count must be non-negative")
	}
	return n, nil
}

// sendError sends a structured error response
func (h *FilingHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	if err != nil {
		h.logger.Error("filing.request_error", "message", message, "error", err)
	}
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "PROCESSING_FAILED",
		Message: message,
		Code:    statusCode,
	})
}
