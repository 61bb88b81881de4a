package dto

import (
	"errors"
	"mime/multipart"
)

// ProcessFormsRequest represents the incoming filing request.
type ProcessFormsRequest struct {
	FilingStatus          string                  `form:"filing_status" binding:"required"`
	NumQualifyingChildren int                     `form:"num_qualifying_children"`
	NumOtherDependents    int                     `form:"num_other_dependents"`
	Files                 []*multipart.FileHeader `form:"files[]" binding:"required"`
}

// Validate performs basic validation on the request.
func (r *ProcessFormsRequest) Validate() error {
	if r.FilingStatus == "" {
		return ErrMissingFilingStatus
	}
	if len(r.Files) == 0 {
		return ErrNoDocuments
	}
	if r.NumQualifyingChildren < 0 || r.NumOtherDependents < 0 {
		return errors.New("dependent counts must be non-negative")
	}
	return nil
}
