package dto

// TaxInputs is the flat numeric input set of the tax liability engine. All
// monetary fields are non-negative dollar amounts; counts are non-negative.
type TaxInputs struct {
	FilingStatus           string  `json:"filing_status"`
	W2Income               float64 `json:"w2_income"`
	W2Withheld             float64 `json:"w2_withheld"`
	IntIncome              float64 `json:"int_income"`
	IntWithheld            float64 `json:"int_withheld"`
	NECIncome              float64 `json:"nec_income"`
	NECWithheld            float64 `json:"nec_withheld"`
	EarlyWithdrawalPenalty float64 `json:"early_withdrawal_penalty"`
	NumQualifyingChildren  int     `json:"num_qualifying_children"`
	NumOtherDependents     int     `json:"num_other_dependents"`
}

// TaxSummary is the full reconciliation produced by the tax liability engine.
// At most one of TaxDue and Refund is non-zero.
type TaxSummary struct {
	TotalIncome         float64 `json:"total_income"`
	Adjustments         float64 `json:"adjustments"`
	AdjustedGrossIncome float64 `json:"adjusted_gross_income"`
	StandardDeduction   float64 `json:"standard_deduction"`
	TaxableIncome       float64 `json:"taxable_income"`
	InitialTaxLiability float64 `json:"initial_tax_liability"`
	TotalCredits        float64 `json:"total_credits"`
	FinalTaxLiability   float64 `json:"final_tax_liability"`
	TotalWithheld       float64 `json:"total_withheld"`
	TaxDue              float64 `json:"tax_due"`
	Refund              float64 `json:"refund"`
}
