package extract

import (
	"regexp"
	"strings"

	"edgarkg/pkg/model"
)

// contextPatterns identify sentences that plausibly name a competitor,
// supplier, customer, or partner, most precise first. Ported from
// competitor_extraction.py's COMPETITOR_CONTEXT_PATTERNS; the supplier/
// customer/partner variants generalize the same shape to the other
// supply-chain relationship types named in spec §3.
var contextPatterns = map[model.RelationshipType][]*regexp.Regexp{
	model.RelCompetitor: {
		regexp.MustCompile(`(?is)[Oo]ur\s+(?:current\s+|primary\s+|principal\s+)?competitors?\s+include:?\s*(.{100,1000}?)(?:Patents|We rely|Intellectual|Our\s+(?:intellectual|business)|$)`),
		regexp.MustCompile(`(?is)[Cc]ompetitors?\s+(?:to\s+[\w\s]+\s+)?include\s+[^.]+such\s+as\s+([A-Z][^.]+)`),
		regexp.MustCompile(`(?is)competitor\s+(?:in\s+[\w\s]+\s+)?(?:is|are)\s+([A-Z][^.]{5,150})`),
		regexp.MustCompile(`(?is)compete\s+with\s+(?:products?\s+from\s+)?([A-Z][^.]{10,200})`),
		regexp.MustCompile(`(?is)competitors?\s+such\s+as\s+([A-Z][^.]{10,200})`),
		regexp.MustCompile(`(?is)also\s+compete\s+with\s+([A-Z][^.]{10,150})`),
	},
	model.RelSupplier: {
		regexp.MustCompile(`(?is)[Oo]ur\s+(?:primary\s+|principal\s+|key\s+)?suppliers?\s+include\s+([A-Z][^.]{10,200})`),
		regexp.MustCompile(`(?is)we\s+(?:purchase|source|procure)[^.]{0,60}from\s+([A-Z][^.]{10,200})`),
		regexp.MustCompile(`(?is)supply\s+agreements?\s+with\s+([A-Z][^.]{10,200})`),
	},
	model.RelCustomer: {
		regexp.MustCompile(`(?is)[Oo]ur\s+(?:largest\s+|primary\s+|principal\s+|key\s+)?customers?\s+include\s+([A-Z][^.]{10,200})`),
		regexp.MustCompile(`(?is)[Ss]ales?\s+to\s+([A-Z][^.]{10,200})\s+(?:accounted|represented)`),
	},
	model.RelPartner: {
		regexp.MustCompile(`(?is)[Ss]trategic\s+(?:partnership|alliance)s?\s+with\s+([A-Z][^.]{10,200})`),
		regexp.MustCompile(`(?is)[Ww]e\s+(?:have\s+)?partnered?\s+with\s+([A-Z][^.]{10,200})`),
		regexp.MustCompile(`(?is)collaboration\s+(?:agreement\s+)?with\s+([A-Z][^.]{10,200})`),
	},
}

var reSuchAs = regexp.MustCompile(`(?i)such\s+as\s+([^;•\n]+)`)

// companyNamePatterns pull candidate company name strings out of a
// context block, most specific (explicit corporate suffix) first.
var companyNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b([A-Z][a-zA-Z0-9&.\-]+(?:\s+[A-Z][a-zA-Z0-9&.\-]+)*)\s+(?:Corporation|Corp\.?|Inc\.?|Ltd\.?|LLC|Company|Co\.)\b`),
	regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,4})\b`),
	regexp.MustCompile(`\b([A-Z][a-z]{4,15})\b`),
	regexp.MustCompile(`\b([A-Z]{3,8})\b`),
}

// Mention is an unresolved candidate relationship mention.
type Mention struct {
	Type    model.RelationshipType
	RawText string
	Context string
}

// ExtractMentions scans businessDescription and riskFactors for
// relationship mentions across all four supply-chain types. Ported from
// competitor_extraction.py's extract_competitor_mentions, generalized
// over model.SupplyChainTypes instead of competitors alone.
func ExtractMentions(businessDescription, riskFactors string) []Mention {
	var mentions []Mention
	seen := make(map[string]bool)

	texts := []string{businessDescription, riskFactors}
	for _, relType := range model.SupplyChainTypes {
		for _, pattern := range contextPatterns[relType] {
			for _, text := range texts {
				if text == "" {
					continue
				}
				for _, m := range pattern.FindAllStringSubmatch(text, -1) {
					captured := text
					if len(m) > 1 {
						captured = m[1]
					} else {
						captured = m[0]
					}
					context := m[0]
					if len(context) > 200 {
						context = context[:200]
					}

					if len(captured) > 200 {
						for _, sa := range reSuchAs.FindAllStringSubmatch(captured, -1) {
							extractNamesFromText(sa[1], context, relType, &mentions, seen)
						}
					}
					extractNamesFromText(captured, context, relType, &mentions, seen)
				}
			}
		}
	}
	return mentions
}

func extractNamesFromText(text, context string, relType model.RelationshipType, mentions *[]Mention, seen map[string]bool) {
	for _, pattern := range companyNamePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			raw := strings.TrimSpace(m[1])
			if len(raw) < 2 || len(raw) > 50 {
				continue
			}
			if isCommonWord(raw) {
				continue
			}
			key := strings.ToLower(raw)
			if seen[key] {
				continue
			}
			seen[key] = true
			*mentions = append(*mentions, Mention{Type: relType, RawText: raw, Context: context})
		}
	}
}

// CompanyIndex resolves raw mention text to a CIK using the exact-
// ticker > exact-name > normalized-name > prefix-match cascade from
// competitor_extraction.py's resolve_competitors, feeding the
// relationship extractor's entity resolution (spec §4.6). Its ticker and
// name tables come only from the companies passed to NewCompanyIndex.
type CompanyIndex struct {
	byName   map[string]companyRef
	byTicker map[string]companyRef
	allNames []string
}

type companyRef struct {
	CIK    string
	Ticker string
	Name   string
}

// NewCompanyIndex builds a lookup table from the graph's known
// companies, generating the same name variants (full, normalized,
// ticker) as build_competitor_lookup.
func NewCompanyIndex(companies []model.Company) *CompanyIndex {
	idx := &CompanyIndex{
		byName:   make(map[string]companyRef),
		byTicker: make(map[string]companyRef),
	}
	seenNames := make(map[string]bool)
	for _, c := range companies {
		ref := companyRef{CIK: c.CIK, Ticker: c.Ticker, Name: c.LegalName}

		nameLower := strings.ToLower(strings.TrimSpace(c.LegalName))
		if nameLower != "" {
			idx.byName[nameLower] = ref
			if !seenNames[nameLower] {
				idx.allNames = append(idx.allNames, nameLower)
				seenNames[nameLower] = true
			}
		}
		if norm := normalizeCompanyName(c.LegalName); norm != "" && norm != nameLower {
			idx.byName[norm] = ref
			if !seenNames[norm] {
				idx.allNames = append(idx.allNames, norm)
				seenNames[norm] = true
			}
		}
		if c.Ticker != "" {
			idx.byTicker[strings.ToUpper(strings.TrimSpace(c.Ticker))] = ref
		}
	}
	return idx
}

var companyNameSuffixes = []string{
	" corporation", " incorporated", " holdings ltd", " holding ltd",
	" holdings", " holding", " technologies", " technology", " solutions",
	" platforms", " services", " systems", " group", " corp.", " corp",
	" inc.", " inc", " ltd.", " ltd", " llc", " plc", " co.", " co",
	"/de/", "/md/", "/nv/",
}

var reLeadingTrailingPunct = regexp.MustCompile(`^[\s,.\-]+|[\s,.\-]+$`)

func normalizeCompanyName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range companyNameSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = name[:len(name)-len(suffix)]
		}
	}
	return strings.TrimSpace(reLeadingTrailingPunct.ReplaceAllString(name, ""))
}

// minPartialConfidence is the floor below which a prefix match is
// rejected outright, matching resolve_competitors' min_confidence=0.8.
const minPartialConfidence = 0.8

// Resolve maps mentions to RelationshipEdges, excluding any mention that
// resolves back to selfCIK, deduplicated by (type, target CIK).
func (idx *CompanyIndex) Resolve(mentions []Mention, selfCIK string) []model.RelationshipEdge {
	seen := make(map[string]bool)
	var edges []model.RelationshipEdge

	for _, mention := range mentions {
		ref, confidence, ok := idx.resolveOne(mention.RawText)
		if !ok || ref.CIK == selfCIK {
			continue
		}
		key := string(mention.Type) + "|" + ref.CIK
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, model.RelationshipEdge{
			Type:       mention.Type,
			FromCIK:    selfCIK,
			ToCIK:      ref.CIK,
			Confidence: confidence,
			RawMention: mention.RawText,
			Context:    mention.Context,
		})
	}
	return edges
}

func (idx *CompanyIndex) resolveOne(raw string) (companyRef, float64, bool) {
	rawLower := strings.ToLower(strings.TrimSpace(raw))
	rawUpper := strings.ToUpper(strings.TrimSpace(raw))

	if ref, ok := idx.byTicker[rawUpper]; ok {
		return ref, 1.0, true
	}
	if ref, ok := idx.byName[rawLower]; ok {
		return ref, 1.0, true
	}
	normalized := normalizeCompanyName(raw)
	if ref, ok := idx.byName[normalized]; ok {
		return ref, 0.9, true
	}
	return idx.findBestPartialMatch(normalized)
}

func (idx *CompanyIndex) findBestPartialMatch(query string) (companyRef, float64, bool) {
	if len(query) < 3 {
		return companyRef{}, 0, false
	}

	var best companyRef
	bestConf := minPartialConfidence
	found := false

	for _, name := range idx.allNames {
		if len(query) > len(name) {
			continue
		}
		if name == query || strings.HasPrefix(name, query+" ") {
			conf := 1.0
			if name != query {
				conf = 0.95
			}
			if conf > bestConf {
				best, bestConf, found = idx.byName[name], conf, true
			}
			continue
		}
		if strings.HasPrefix(name, query) && float64(len(query))/float64(len(name)) > 0.6 {
			conf := 0.85 * (float64(len(query)) / float64(len(name)))
			if conf > bestConf {
				best, bestConf, found = idx.byName[name], conf, true
			}
		}
	}
	return best, bestConf, found
}
