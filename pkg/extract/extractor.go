package extract

import (
	"strings"

	"edgarkg/pkg/model"
)

// Result is everything extract10k produces from one filing, ready to
// merge into a model.Company and feed pkg/graph's loader.
type Result struct {
	Website             string
	BusinessDescription string
	RiskFactors         string
	Metadata            Metadata
	Mentions            []Mention
}

// FromFiling runs every extractor over a single shared Document: website
// discovery, Item 1/1A section extraction, and header metadata. It does
// not resolve relationship mentions to CIKs — that needs the graph's
// current company roster, supplied separately via CompanyIndex.Resolve
// once all companies are loaded (spec §4.6's extraction/resolution
// split).
func FromFiling(doc *Document, isXML bool) Result {
	var res Result

	if website, ok := ExtractWebsite(doc, isXML); ok {
		res.Website = website
	}

	text := doc.Text()
	if biz, ok := ExtractSection(text, SectionBusinessDescription); ok {
		res.BusinessDescription = cleanWhitespace(biz)
	}
	if risk, ok := ExtractSection(text, SectionRiskFactors); ok {
		res.RiskFactors = cleanWhitespace(risk)
	}

	res.Metadata = ExtractMetadata(doc.Raw)
	res.Mentions = ExtractMentions(res.BusinessDescription, res.RiskFactors)

	return res
}

func cleanWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ApplyTo merges r's extracted Company-level fields into company,
// leaving fields r didn't find untouched (so a partial re-extraction
// never clobbers a previously enriched value with an empty one). r.Website
// is not applied here: it lives on model.Domain, not model.Company —
// callers read it directly and hand it to the domain-consensus/
// graph-load stages.
func (r Result) ApplyTo(company *model.Company) {
	if r.BusinessDescription != "" {
		company.BusinessDescription = r.BusinessDescription
	}
	if r.RiskFactors != "" {
		company.RiskFactors = r.RiskFactors
	}
	if r.Metadata.AccessionNumber != "" {
		company.AccessionNumber = r.Metadata.AccessionNumber
	}
	if r.Metadata.FilingDate != "" {
		company.FilingDate = r.Metadata.FilingDate
	}
	if r.Metadata.FiscalYearEnd != "" {
		company.FiscalYearEnd = r.Metadata.FiscalYearEnd
	}
}
