package service

import (
	"github.com/taxproc/tax-document-processor/dto"
	"github.com/taxproc/tax-document-processor/utils"
)

// AggregateTaxInputs merges per-document parse results into the flat numeric
// inputs of the tax calculator. At most one document per type contributes:
// the first seen wins and later duplicates are silently ignored. Missing or
// malformed monetary fields coerce to zero.
func AggregateTaxInputs(parsed []dto.ParsedForm, filingStatus string, numQualifyingChildren, numOtherDependents int) dto.TaxInputs {
	w2Fields := firstOfType(parsed, dto.DocTypeW2)
	intFields := firstOfType(parsed, dto.DocType1099INT)
	necFields := firstOfType(parsed, dto.DocType1099NEC)

	return dto.TaxInputs{
		FilingStatus:           filingStatus,
		W2Income:               utils.ParseAmount(w2Fields[dto.FieldW2Wages]),
		W2Withheld:             utils.ParseAmount(w2Fields[dto.FieldW2Withheld]),
		IntIncome:              utils.ParseAmount(intFields[dto.FieldIntIncome]),
		IntWithheld:            utils.ParseAmount(intFields[dto.FieldIntWithheld]),
		NECIncome:              utils.ParseAmount(necFields[dto.FieldNECIncome]),
		NECWithheld:            utils.ParseAmount(necFields[dto.FieldNECWithheld]),
		EarlyWithdrawalPenalty: utils.ParseAmount(intFields[dto.FieldIntPenalty]),
		NumQualifyingChildren:  numQualifyingChildren,
		NumOtherDependents:     numOtherDependents,
	}
}

// firstOfType returns the parsed fields of the first document with the given
// type. Lookups on the returned map are safe even when no document matched.
func firstOfType(parsed []dto.ParsedForm, docType dto.DocumentType) map[string]string {
	for _, form := range parsed {
		if form.DocumentType == docType {
			return form.ParsedFields
		}
	}
	return nil
}
