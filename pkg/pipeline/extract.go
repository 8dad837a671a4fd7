package pipeline

import (
	"fmt"
	"os"
	"strings"

	"edgarkg/pkg/extract"
	"edgarkg/pkg/model"
)

// ExtractTenK runs the extract10k stage (spec §4.6) for one CIK's filing
// HTML at htmlPath: parses it once (through d.Docs's per-CIK cache),
// extracts website/business-description/risk-factors/metadata, and scans
// the extracted text for competitor/supplier/customer/partner mentions.
// Resolution of those mentions to CIKs happens later, once the full
// company roster is known (ResolveRelationships, below).
func ExtractTenK(d *Deps, cik, htmlPath string) (extract.Result, error) {
	raw, err := os.ReadFile(htmlPath)
	if err != nil {
		return extract.Result{}, fmt.Errorf("read filing html %s: %w", htmlPath, err)
	}

	doc, err := d.Docs.GetOrParse(cik, string(raw))
	if err != nil {
		return extract.Result{}, fmt.Errorf("parse filing html for cik %s: %w", cik, err)
	}

	isXML := strings.HasPrefix(strings.TrimSpace(string(raw)), "<?xml")
	return extract.FromFiling(doc, isXML), nil
}

// ResolveRelationships resolves every extracted company's raw mentions
// against the full company roster, then runs the spec §6 blacklist
// passes (common-word and context-sensitive) before returning the final
// edge set ready for GraphLoad.
func ResolveRelationships(companies []model.Company, mentionsByCIK map[string][]extract.Mention) []model.RelationshipEdge {
	idx := extract.NewCompanyIndex(companies)
	tickerByCIK := make(map[string]string, len(companies))
	for _, c := range companies {
		tickerByCIK[c.CIK] = c.Ticker
	}

	var edges []model.RelationshipEdge
	for cik, mentions := range mentionsByCIK {
		edges = append(edges, idx.Resolve(mentions, cik)...)
	}

	edges = extract.CleanupFalsePositives(edges)
	edges = extract.CleanupContextSensitive(edges, tickerByCIK)
	return edges
}
