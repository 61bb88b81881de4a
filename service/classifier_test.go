package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxproc/tax-document-processor/dto"
)

func TestClassifyDocumentHeaderShortCircuit(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "Form W-2 Wage and Tax Statement 2024 some other noise on this page to pad it out"},
		{Number: 2, Text: "Interest Income and Early withdrawal penalty corroboration that must not matter"},
	}
	assert.Equal(t, dto.DocTypeW2, ClassifyDocument(pages))
}

func TestClassifyDocumentWeakCueOnLaterPage(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "Instructions for the recipient. Keep this copy for your records."},
		{Number: 2, Text: "Box 2 shows any Early withdrawal penalty charged against your account."},
	}
	assert.Equal(t, dto.DocType1099INT, ClassifyDocument(pages))
}

func TestClassifyDocumentUnknownWithoutMatches(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "Quarterly newsletter from your credit union about branch opening hours."},
		{Number: 2, Text: "Completely unrelated content."},
	}
	assert.Equal(t, dto.DocTypeUnknown, ClassifyDocument(pages))
}

func TestClassifyDocumentEmptyPages(t *testing.T) {
	assert.Equal(t, dto.DocTypeUnknown, ClassifyDocument(nil))
	assert.Equal(t, dto.DocTypeUnknown, ClassifyDocument([]PageText{{Number: 1, Text: "   "}}))
}

// A weak pattern repeating across pages counts once; two distinct weak
// patterns on a single page outweigh it.
func TestClassifyDocumentWeakScoreCountsPatternsOncePerDocument(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "Wage and Tax Statement copies for your state filing records."},
		{Number: 2, Text: "Wage and Tax Statement copies for your federal filing records."},
		{Number: 3, Text: "Wage and Tax Statement copies for your local filing records."},
		{Number: 4, Text: "Nonemployee compensation reported to the IRS. Payer's TIN shown above."},
	}
	assert.Equal(t, dto.DocType1099NEC, ClassifyDocument(pages))
}

func TestFindRelevantPagePicksHighestScore(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "Instructions for filing. Nothing to see."},
		{Number: 2, Text: "1 Interest income $450.00 PAYER'S TIN 12-3456789 2 Early withdrawal penalty"},
		{Number: 3, Text: "Interest income general explanation text."},
	}
	page, found := FindRelevantPage(dto.DocType1099INT, pages)
	assert.True(t, found)
	assert.Equal(t, 2, page)
}

// Under a strict greater-than comparison a tie keeps the earlier page.
func TestFindRelevantPageTieKeepsLowestPage(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "Federal income tax withheld summary."},
		{Number: 2, Text: "Federal income tax withheld appears here too."},
	}
	page, found := FindRelevantPage(dto.DocTypeW2, pages)
	assert.True(t, found)
	assert.Equal(t, 1, page)
}

func TestFindRelevantPageNoMatch(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "No recognizable form language anywhere on this page."},
	}
	_, found := FindRelevantPage(dto.DocTypeW2, pages)
	assert.False(t, found)
}

func TestFindRelevantPageUnknownType(t *testing.T) {
	pages := []PageText{
		{Number: 1, Text: "Federal income tax withheld"},
	}
	_, found := FindRelevantPage(dto.DocTypeUnknown, pages)
	assert.False(t, found)
}
