package service

import (
	"regexp"
	"strings"

	"github.com/taxproc/tax-document-processor/dto"
)

// PageText carries the OCR/text-layer content of one page. Number is 1-based.
type PageText struct {
	Number int
	Text   string
}

// classificationOrder fixes the type iteration order so header short-circuit
// results are deterministic.
var classificationOrder = []dto.DocumentType{
	dto.DocTypeW2,
	dto.DocType1099INT,
	dto.DocType1099NEC,
}

// cueSet holds the compiled patterns for one document type: a single header
// pattern whose match is conclusive, plus weak corroborating patterns.
type cueSet struct {
	header *regexp.Regexp
	weak   []*regexp.Regexp
}

var docTypeCues = map[dto.DocumentType]cueSet{
	dto.DocTypeW2: {
		header: regexp.MustCompile(`(?i)Form\s*W-2`),
		weak: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Wage\s+and\s+Tax\s+Statement`),
			regexp.MustCompile(`(?i)Wages,\s+tips,\s+other\s+compensation`),
		},
	},
	dto.DocType1099INT: {
		header: regexp.MustCompile(`(?i)Form\s*1099-INT`),
		weak: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Interest\s+Income`),
			regexp.MustCompile(`(?i)Early\s+withdrawal\s+penalty`),
		},
	},
	dto.DocType1099NEC: {
		header: regexp.MustCompile(`(?i)Form\s*1099-NEC`),
		weak: []*regexp.Regexp{
			regexp.MustCompile(`(?i)Nonemployee\s+Compensation`),
			regexp.MustCompile(`(?i)Payer's\s+TIN`),
		},
	},
}

// pageCues lists, per document type, the phrases expected on the page that
// actually carries the extractable boxes.
var pageCues = map[dto.DocumentType][]*regexp.Regexp{
	dto.DocTypeW2: {
		regexp.MustCompile(`(?i)Wages, tips, other compensation`),
		regexp.MustCompile(`(?i)Federal income tax withheld`),
		regexp.MustCompile(`(?i)Wage and Tax Statement`),
	},
	dto.DocType1099INT: {
		regexp.MustCompile(`(?i)Interest Income`),
		regexp.MustCompile(`(?i)Payer's TIN`),
		regexp.MustCompile(`(?i)Early withdrawal penalty`),
	},
	dto.DocType1099NEC: {
		regexp.MustCompile(`(?i)Nonemployee Compensation`),
		regexp.MustCompile(`(?i)Payer's TIN`),
		regexp.MustCompile(`(?i)Federal income tax withheld`),
	},
}

// ClassifyDocument determines the form type from page-indexed text. Pages are
// scanned in order; a header match on any page is conclusive and returns
// immediately. Otherwise each weak pattern counts at most once per document,
// and the type with the highest weak score wins. A zero score means Unknown.
func ClassifyDocument(pages []PageText) dto.DocumentType {
	weakMatched := make(map[dto.DocumentType]map[int]bool)

	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		for _, docType := range classificationOrder {
			if docTypeCues[docType].header.MatchString(page.Text) {
				return docType
			}
		}
		for _, docType := range classificationOrder {
			for i, pattern := range docTypeCues[docType].weak {
				if pattern.MatchString(page.Text) {
					if weakMatched[docType] == nil {
						weakMatched[docType] = make(map[int]bool)
					}
					weakMatched[docType][i] = true
				}
			}
		}
	}

	best := dto.DocTypeUnknown
	bestScore := 0
	for _, docType := range classificationOrder {
		if score := len(weakMatched[docType]); score > bestScore {
			bestScore = score
			best = docType
		}
	}
	return best
}

// FindRelevantPage locates the page most likely to carry the extractable
// fields for a confirmed document type. Each page scores the count of distinct
// cues found on it; the strictly highest score wins, so ties keep the lowest
// page number. Returns false when no page matches any cue.
func FindRelevantPage(docType dto.DocumentType, pages []PageText) (int, bool) {
	cues, ok := pageCues[docType]
	if !ok {
		return 0, false
	}

	bestPage := 0
	maxScore := 0
	for _, page := range pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}
		score := 0
		for _, cue := range cues {
			if cue.MatchString(page.Text) {
				score++
			}
		}
		if score > maxScore {
			maxScore = score
			bestPage = page.Number
		}
	}
	if maxScore == 0 {
		return 0, false
	}
	return bestPage, true
}
