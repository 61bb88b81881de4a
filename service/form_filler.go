package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/taxproc/tax-document-processor/dto"
)

// AcroForm field names on the fillable IRS Form 1040 (2024 revision), keyed by
// the line they carry.
var f1040TextFields = map[string]string{
	"first_name":          "f1_04[0]",
	"last_name":           "f1_05[0]",
	"ssn":                 "f1_06[0]",
	"line_1a_wages":       "f1_32[0]",
	"line_9_total_income": "f1_59[0]",
	"line_11_agi":         "f2_01[0]",
	"line_12_deduction":   "f2_02[0]",
	"line_15_taxable":     "f2_05[0]",
	"line_16_tax":         "f2_06[0]",
	"line_19_credits":     "f2_09[0]",
	"line_24_total_tax":   "f2_14[0]",
	"line_25d_withheld":   "f2_18[0]",
	"line_33_payments":    "f2_25[0]",
	"line_34_overpaid":    "f2_26[0]",
	"line_37_amount_owed": "f2_29[0]",
}

// Filing-status checkboxes share the c1_3 group on the form.
var f1040StatusCheckboxes = map[string]string{
	"single":                    "c1_3[0]",
	"married_filing_jointly":    "c1_3[1]",
	"married_filing_separately": "c1_3[2]",
	"head_of_household":         "c1_4[0]",
	"qualifying_widow":          "c1_5[0]",
}

// pdfcpu form-fill JSON shapes (the format `pdfcpu form export` produces).
type formTextField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type formCheckBox struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

type formPage struct {
	TextField []formTextField `json:"textfield,omitempty"`
	CheckBox  []formCheckBox  `json:"checkbox,omitempty"`
}

type fillData struct {
	Forms []formPage `json:"forms"`
}

// Fill1040 fills the Form 1040 template with the computed summary and the
// taxpayer identity pulled off the W-2, returning the filled document bytes.
func Fill1040(templatePath string, summary *dto.TaxSummary, w2Fields map[string]string, filingStatus string) ([]byte, error) {
	template, err := os.Open(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open 1040 template: %w", err)
	}
	defer template.Close()

	page := formPage{}
	addText := func(key string, value string) {
		if value == "" || value == "N/A" {
			return
		}
		page.TextField = append(page.TextField, formTextField{Name: f1040TextFields[key], Value: value})
	}
	addAmount := func(key string, amount float64) {
		page.TextField = append(page.TextField, formTextField{Name: f1040TextFields[key], Value: fmt.Sprintf("%.2f", amount)})
	}

	first, last := splitName(w2Fields[dto.FieldW2Employee])
	addText("first_name", first)
	addText("last_name", last)
	addText("ssn", w2Fields[dto.FieldW2SSN])

	addAmount("line_1a_wages", summary.TotalIncome)
	addAmount("line_9_total_income", summary.TotalIncome)
	addAmount("line_11_agi", summary.AdjustedGrossIncome)
	addAmount("line_12_deduction", summary.StandardDeduction)
	addAmount("line_15_taxable", summary.TaxableIncome)
	addAmount("line_16_tax", summary.InitialTaxLiability)
	addAmount("line_19_credits", summary.TotalCredits)
	addAmount("line_24_total_tax", summary.FinalTaxLiability)
	addAmount("line_25d_withheld", summary.TotalWithheld)
	addAmount("line_33_payments", summary.TotalWithheld)
	addAmount("line_34_overpaid", summary.Refund)
	addAmount("line_37_amount_owed", summary.TaxDue)

	if box, ok := f1040StatusCheckboxes[NormalizeFilingStatus(filingStatus)]; ok {
		page.CheckBox = append(page.CheckBox, formCheckBox{Name: box, Value: true})
	}

	fillJSON, err := json.Marshal(fillData{Forms: []formPage{page}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form data: %w", err)
	}

	var out bytes.Buffer
	conf := model.NewDefaultConfiguration()
	if err := api.FillForm(template, bytes.NewReader(fillJSON), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}
	return out.Bytes(), nil
}

// splitName breaks a full name into the 1040's first/last boxes: first token
// and last token, middle names folded into neither.
func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}
