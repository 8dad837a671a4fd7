package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// SectionType identifies which Item of a 10-K a piece of text comes from.
type SectionType string

const (
	SectionBusinessDescription SectionType = "business_description"
	SectionRiskFactors         SectionType = "risk_factors"
)

// sectionTitlePatterns gives each section the handful of heading spellings
// that actually appear across filers, most specific first. Adapted from
// parser.go's extractSectionByTitle, simplified from that file's
// markdown/TOC-anchor machinery (which exists to stitch together
// Pandoc-rendered financial statements) down to the plain-text Item
// headings this extractor needs.
var sectionTitlePatterns = map[SectionType][]string{
	SectionBusinessDescription: {
		`Item\s+1\.?\s*Business`,
		`Item\s+1\.?\s*[-–—]\s*Business`,
	},
	SectionRiskFactors: {
		`Item\s+1A\.?\s*Risk\s+Factors`,
		`Item\s+1A\.?\s*[-–—]\s*Risk\s+Factors`,
	},
}

// sectionEndPatterns bound a section once its heading is found, matching
// the next Item heading or a handful of document-end markers. Ported
// from parser.go's findNextSectionEnd, generalized from statement-only
// boundaries to the full Item sequence.
var sectionEndPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\n\s*Item\s+1A\.?\s*Risk\s+Factors`),
	regexp.MustCompile(`(?i)\n\s*Item\s+1B\.?`),
	regexp.MustCompile(`(?i)\n\s*Item\s+2\.?\s*Properties`),
	regexp.MustCompile(`(?i)\n\s*Item\s+3\.?`),
	regexp.MustCompile(`(?i)\n\s*SIGNATURES?\s*\n`),
}

const maxSectionLen = 50000

// ExtractSection finds sectionType's heading in text and returns the
// text up to the next section boundary (capped at maxSectionLen), or
// ("", false) if no heading could be located.
func ExtractSection(text string, sectionType SectionType) (string, bool) {
	patterns, ok := sectionTitlePatterns[sectionType]
	if !ok {
		return "", false
	}

	minPos := len(text) / 10 // skip table-of-contents references near the top
	for _, p := range patterns {
		re := regexp.MustCompile(`(?i)(?:^|\n)\s*` + p)
		matches := re.FindAllStringIndex(text, -1)
		for _, m := range matches {
			if m[0] < minPos {
				continue
			}
			end := findNextSectionEnd(text, m[0])
			if end-m[0] < 200 {
				continue
			}
			return strings.TrimSpace(text[m[0]:end]), true
		}
	}
	return "", false
}

func findNextSectionEnd(text string, startPos int) int {
	remaining := text[startPos:]
	maxLen := maxSectionLen
	if len(remaining) < maxLen {
		maxLen = len(remaining)
	}
	window := remaining[:maxLen]

	minEnd := maxLen
	for _, re := range sectionEndPatterns {
		if m := re.FindStringIndex(window); m != nil && m[0] > 500 && m[0] < minEnd {
			minEnd = m[0]
		}
	}
	return startPos + minEnd
}

// --- filing metadata (spec §4.6) ---

var (
	reAccessionNumber = regexp.MustCompile(`(?i)ACCESSION NUMBER:\s*([\d-]+)`)
	reFilingDate      = regexp.MustCompile(`(?i)FILED AS OF DATE:\s*(\d{8})`)
	reFiscalYearEnd   = regexp.MustCompile(`(?i)CONFORMED PERIOD OF REPORT:\s*(\d{8})`)
)

// Metadata holds the header fields extracted from the first slice of a
// raw filing: the SEC-submission-header block, not the rendered
// document body.
type Metadata struct {
	AccessionNumber string
	FilingDate      string // YYYY-MM-DD
	FiscalYearEnd   string // YYYY-MM-DD
}

// ExtractMetadata scans the first 20KB of rawHTML's SEC header block for
// accession number, filing date, and fiscal year end.
func ExtractMetadata(rawHTML string) Metadata {
	head := rawHTML
	if len(head) > 20000 {
		head = head[:20000]
	}

	var md Metadata
	if m := reAccessionNumber.FindStringSubmatch(head); m != nil {
		md.AccessionNumber = m[1]
	}
	if m := reFilingDate.FindStringSubmatch(head); m != nil {
		md.FilingDate = formatYYYYMMDD(m[1])
	}
	if m := reFiscalYearEnd.FindStringSubmatch(head); m != nil {
		md.FiscalYearEnd = formatYYYYMMDD(m[1])
	}
	return md
}

func formatYYYYMMDD(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	return raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
}

// FiscalYear returns the fiscal year implied by md.FiscalYearEnd, falling
// back to md.FilingDate, or (0, false) if neither parses.
func (md Metadata) FiscalYear() (int, bool) {
	src := md.FiscalYearEnd
	if src == "" {
		src = md.FilingDate
	}
	if len(src) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(src[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}
