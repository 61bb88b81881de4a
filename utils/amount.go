package utils

import (
	"strconv"
	"strings"
)

// ParseAmount coerces a monetary string coming out of OCR/AI extraction into a
// dollar amount. Currency symbols and thousands separators are stripped; any
// value that still does not parse (including the extractor's "N/A" sentinel)
// defaults to 0 rather than failing the filing.
func ParseAmount(s string) float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}
