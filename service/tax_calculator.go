package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/taxproc/tax-document-processor/dto"
)

// InvalidFilingStatusError reports a filing status with no bracket or
// deduction table. The tax computation cannot proceed without one, so this is
// fatal for the whole request.
type InvalidFilingStatusError struct {
	Status string
}

func (e *InvalidFilingStatusError) Error() string {
	return fmt.Sprintf("unknown filing status for tax calculation: %q", e.Status)
}

// taxBracket is one contiguous income range taxed at a single marginal rate.
// Tables must partition [0, inf) in increasing order with no gaps or overlaps.
type taxBracket struct {
	lower float64
	upper float64
	rate  float64
}

// Tax year 2024 constants.
var taxBrackets2024 = map[string][]taxBracket{
	"single": {
		{0, 11600, 0.10}, {11600, 47150, 0.12}, {47150, 100525, 0.22},
		{100525, 191950, 0.24}, {191950, 243725, 0.32}, {243725, 609350, 0.35},
		{609350, math.Inf(1), 0.37},
	},
	"married_filing_jointly": {
		{0, 23200, 0.10}, {23200, 94300, 0.12}, {94300, 201050, 0.22},
		{201050, 383900, 0.24}, {383900, 487450, 0.32}, {487450, 731200, 0.35},
		{731200, math.Inf(1), 0.37},
	},
	"head_of_household": {
		{0, 16550, 0.10}, {16550, 63100, 0.12}, {63100, 100500, 0.22},
		{100500, 191950, 0.24}, {191950, 243700, 0.32}, {243700, 609350, 0.35},
		{609350, math.Inf(1), 0.37},
	},
	"married_filing_separately": {
		{0, 11600, 0.10}, {11600, 47150, 0.12}, {47150, 100525, 0.22},
		{100525, 191950, 0.24}, {191950, 243725, 0.32}, {243725, 365600, 0.35},
		{365600, math.Inf(1), 0.37},
	},
	// A qualifying surviving spouse uses the married-filing-jointly schedule.
	"qualifying_widow": {
		{0, 23200, 0.10}, {23200, 94300, 0.12}, {94300, 201050, 0.22},
		{201050, 383900, 0.24}, {383900, 487450, 0.32}, {487450, 731200, 0.35},
		{731200, math.Inf(1), 0.37},
	},
}

var standardDeduction2024 = map[string]float64{
	"single":                    14600,
	"married_filing_jointly":    29200,
	"married_filing_separately": 14600,
	"head_of_household":         21900,
	"qualifying_widow":          29200,
}

const (
	childTaxCreditAmount          = 2000
	creditForOtherDependentAmount = 500
)

// computeBracketedTax calculates tax owed on a taxable income under a
// progressive bracket table. Brackets fully below the income contribute their
// whole width, the bracket containing it contributes the partial width, and
// brackets above contribute nothing. Rounded to cents.
func computeBracketedTax(taxableIncome float64, brackets []taxBracket) float64 {
	var tax float64
	for _, b := range brackets {
		if taxableIncome > b.lower {
			tax += (math.Min(taxableIncome, b.upper) - b.lower) * b.rate
		}
	}
	return roundCents(tax)
}

// CalculateTaxLiability turns aggregated document inputs into a full
// reconciliation: income, adjustments, deduction, bracketed tax, dependent
// credits, and the withholding balance.
func CalculateTaxLiability(in dto.TaxInputs) (*dto.TaxSummary, error) {
	statusKey := NormalizeFilingStatus(in.FilingStatus)

	deduction, ok := standardDeduction2024[statusKey]
	if !ok {
		return nil, &InvalidFilingStatusError{Status: in.FilingStatus}
	}
	brackets, ok := taxBrackets2024[statusKey]
	if !ok {
		return nil, &InvalidFilingStatusError{Status: in.FilingStatus}
	}

	totalIncome := in.W2Income + in.IntIncome + in.NECIncome
	adjustments := in.EarlyWithdrawalPenalty
	adjustedGrossIncome := totalIncome - adjustments

	taxableIncome := math.Max(0, adjustedGrossIncome-deduction)
	initialTax := computeBracketedTax(taxableIncome, brackets)

	totalCredits := float64(in.NumQualifyingChildren)*childTaxCreditAmount +
		float64(in.NumOtherDependents)*creditForOtherDependentAmount

	// Credits are non-refundable here: they reduce tax but never below zero.
	finalTax := math.Max(0, initialTax-totalCredits)

	totalWithheld := in.W2Withheld + in.IntWithheld + in.NECWithheld

	summary := &dto.TaxSummary{
		TotalIncome:         totalIncome,
		Adjustments:         adjustments,
		AdjustedGrossIncome: adjustedGrossIncome,
		StandardDeduction:   deduction,
		TaxableIncome:       taxableIncome,
		InitialTaxLiability: initialTax,
		TotalCredits:        totalCredits,
		FinalTaxLiability:   finalTax,
		TotalWithheld:       totalWithheld,
	}
	if finalTax > totalWithheld {
		summary.TaxDue = roundCents(finalTax - totalWithheld)
	} else {
		summary.Refund = roundCents(totalWithheld - finalTax)
	}
	return summary, nil
}

// NormalizeFilingStatus maps a user-facing status string onto the table key
// form: lowercase with spaces as underscores.
func NormalizeFilingStatus(status string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(status)), " ", "_")
}

// ValidFilingStatus reports whether a status has bracket and deduction tables.
func ValidFilingStatus(status string) bool {
	_, ok := taxBrackets2024[NormalizeFilingStatus(status)]
	return ok
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
