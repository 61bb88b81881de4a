package dto

type DocumentType string

const (
	DocTypeW2      DocumentType = "W-2"
	DocType1099INT DocumentType = "1099-INT"
	DocType1099NEC DocumentType = "1099-NEC"
	DocTypeUnknown DocumentType = "Unknown"
	DocTypeError   DocumentType = "Error"
)

// Field labels the aggregator reads back out of parsed documents. These are
// the keys the AI extractor is asked to fill; spellings must stay stable.
const (
	FieldW2Wages     = "Box 1: Wages, tips, other compensation"
	FieldW2Withheld  = "Box 2: Federal income tax withheld"
	FieldW2Employee  = "Employee Name"
	FieldW2SSN       = "Employee Social Security Number (SSN)"
	FieldIntIncome   = "Box 1: Interest income"
	FieldIntPenalty  = "Box 2: Early withdrawal penalty"
	FieldIntWithheld = "Box 4: Federal income tax withheld"
	FieldNECIncome   = "Box 1: Nonemployee compensation"
	FieldNECWithheld = "Box 4: Federal income tax withheld"
)

// FieldDefinition pairs a stable field label with a locating hint that is
// passed verbatim to the AI extractor.
type FieldDefinition struct {
	Label string
	Hint  string
}

// FormFieldDefs lists, per document type and in presentation order, the fields
// the extractor should pull off the relevant page.
var FormFieldDefs = map[DocumentType][]FieldDefinition{
	DocTypeW2: {
		{Label: "Employer Identification Number (EIN)", Hint: "the box labeled 'Employer identification number'"},
		{Label: "Employer Name", Hint: "the upper-left under 'Employer's name'"},
		{Label: FieldW2Employee, Hint: "the lower-left under 'Employee's name'"},
		{Label: FieldW2SSN, Hint: "the box labeled 'Employee's social security number'"},
		{Label: FieldW2Wages, Hint: "the box labeled '1 Wages, tips, other compensation'"},
		{Label: FieldW2Withheld, Hint: "the box labeled '2 Federal income tax withheld'"},
	},
	DocType1099INT: {
		{Label: "Payer's Name", Hint: "the upper-left under 'PAYER'S name'"},
		{Label: "Payer's TIN", Hint: "the box labeled 'PAYER'S TIN'"},
		{Label: "Recipient's Name", Hint: "the lower-left under 'RECIPIENT'S name'"},
		{Label: "Recipient's TIN", Hint: "the box labeled 'RECIPIENT'S TIN'"},
		{Label: FieldIntIncome, Hint: "the box labeled '1 Interest income'"},
		{Label: FieldIntPenalty, Hint: "the box labeled '2 Early withdrawal penalty'"},
		{Label: FieldIntWithheld, Hint: "the box labeled '4 Federal income tax withheld'"},
	},
	DocType1099NEC: {
		{Label: "Payer's Name", Hint: "the upper-left under 'PAYER'S name'"},
		{Label: "Payer's TIN", Hint: "the box labeled 'PAYER'S TIN'"},
		{Label: "Recipient's Name", Hint: "the lower-left under 'RECIPIENT'S name'"},
		{Label: "Recipient's TIN", Hint: "the box labeled 'RECIPIENT'S TIN'"},
		{Label: FieldNECIncome, Hint: "the box labeled '1 Nonemployee compensation'"},
		{Label: FieldNECWithheld, Hint: "the box labeled '4 Federal income tax withheld'"},
	},
}

// ParsedForm is the per-file result of the extraction pipeline. It is built
// once by the parser service and read-only afterwards; the aggregator looks
// fields up by exact label.
type ParsedForm struct {
	File         string            `json:"file"`
	DocumentType DocumentType      `json:"document_type"`
	ParsedFields map[string]string `json:"parsed_fields"`
}
