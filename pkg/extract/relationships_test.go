package extract

import (
	"testing"

	"edgarkg/pkg/model"
)

func testIndex() *CompanyIndex {
	return NewCompanyIndex([]model.Company{
		{CIK: "0000320193", Ticker: "AAPL", LegalName: "Apple Inc."},
		{CIK: "0000789019", Ticker: "MSFT", LegalName: "Microsoft Corporation"},
		{CIK: "0001652044", Ticker: "GOOGL", LegalName: "Alphabet Inc."},
	})
}

func TestCompanyIndex_ResolveByTicker(t *testing.T) {
	idx := testIndex()
	edges := idx.Resolve([]Mention{{Type: model.RelCompetitor, RawText: "AAPL"}}, "self")
	if len(edges) != 1 || edges[0].ToCIK != "0000320193" || edges[0].Confidence != 1.0 {
		t.Errorf("Resolve(AAPL) = %+v", edges)
	}
}

func TestCompanyIndex_ResolveByNormalizedName(t *testing.T) {
	idx := testIndex()
	edges := idx.Resolve([]Mention{{Type: model.RelCompetitor, RawText: "Microsoft"}}, "self")
	if len(edges) != 1 || edges[0].ToCIK != "0000789019" {
		t.Errorf("Resolve(Microsoft) = %+v", edges)
	}
}

func TestCompanyIndex_ResolveExcludesSelf(t *testing.T) {
	idx := testIndex()
	edges := idx.Resolve([]Mention{{Type: model.RelCompetitor, RawText: "AAPL"}}, "0000320193")
	if len(edges) != 0 {
		t.Errorf("expected self-mentions to be excluded, got %+v", edges)
	}
}

func TestCompanyIndex_ResolveDedupsByTypeAndCIK(t *testing.T) {
	idx := testIndex()
	mentions := []Mention{
		{Type: model.RelCompetitor, RawText: "AAPL"},
		{Type: model.RelCompetitor, RawText: "Apple Inc."},
	}
	edges := idx.Resolve(mentions, "self")
	if len(edges) != 1 {
		t.Errorf("expected dedup to collapse repeated (type, cik) pairs, got %+v", edges)
	}
}

func TestCompanyIndex_ResolveNoMatchReturnsNothing(t *testing.T) {
	idx := testIndex()
	edges := idx.Resolve([]Mention{{Type: model.RelCompetitor, RawText: "Totally Unknown Corp"}}, "self")
	if len(edges) != 0 {
		t.Errorf("expected no edges for an unknown name, got %+v", edges)
	}
}

func TestExtractMentions_FindsCompetitorContext(t *testing.T) {
	text := "Our competitors include Microsoft Corporation, Alphabet Inc., and a range of smaller hardware and software vendors across every market in which we operate. Patents are important to our business."
	mentions := ExtractMentions(text, "")
	if len(mentions) == 0 {
		t.Fatal("expected at least one competitor mention")
	}
	for _, m := range mentions {
		if m.Type != model.RelCompetitor {
			t.Errorf("expected competitor mentions only, got %v", m.Type)
		}
	}
}

func TestExtractMentions_EmptyInput(t *testing.T) {
	if mentions := ExtractMentions("", ""); mentions != nil {
		t.Errorf("ExtractMentions(\"\", \"\") = %v, want nil", mentions)
	}
}
