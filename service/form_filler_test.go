package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxproc/tax-document-processor/dto"
)

func TestFill1040MissingTemplate(t *testing.T) {
	summary := &dto.TaxSummary{TotalIncome: 50000}

	_, err := Fill1040("testdata/does-not-exist.pdf", summary, nil, "single")

	assert.Error(t, err)
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in          string
		first, last string
	}{
		{"Jane Q Public", "Jane", "Public"},
		{"Jane Public", "Jane", "Public"},
		{"Cher", "Cher", ""},
		{"", "", ""},
		{"  John   Ronald  Reuel  Tolkien  ", "John", "Tolkien"},
	}

	for _, tc := range cases {
		first, last := splitName(tc.in)
		assert.Equal(t, tc.first, first, "input %q", tc.in)
		assert.Equal(t, tc.last, last, "input %q", tc.in)
	}
}

func TestFilingStatusCheckboxesCoverAllStatuses(t *testing.T) {
	for status := range taxBrackets2024 {
		_, ok := f1040StatusCheckboxes[status]
		assert.True(t, ok, "filing status %q has no 1040 checkbox mapping", status)
	}
}
