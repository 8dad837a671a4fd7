package pipeline

import (
	"testing"

	"edgarkg/pkg/extract"
	"edgarkg/pkg/model"
)

func TestResolveRelationships_AppliesBlacklists(t *testing.T) {
	companies := []model.Company{
		{CIK: "0000320193", Ticker: "AAPL", LegalName: "Apple Inc."},
		{CIK: "0000789019", Ticker: "MSFT", LegalName: "Microsoft Corporation"},
	}
	mentionsByCIK := map[string][]extract.Mention{
		"0000320193": {
			{Type: model.RelCompetitor, RawText: "Microsoft"},
			{Type: model.RelCompetitor, RawText: "Company"}, // common word, dropped
		},
	}

	edges := ResolveRelationships(companies, mentionsByCIK)
	if len(edges) != 1 || edges[0].ToCIK != "0000789019" {
		t.Errorf("ResolveRelationships = %+v, want a single edge to Microsoft's CIK", edges)
	}
}

func TestResolveRelationships_EmptyInput(t *testing.T) {
	if edges := ResolveRelationships(nil, nil); len(edges) != 0 {
		t.Errorf("expected no edges for empty input, got %+v", edges)
	}
}
