package extract

import (
	"testing"

	"edgarkg/pkg/model"
)

func TestCleanupFalsePositives(t *testing.T) {
	edges := []model.RelationshipEdge{
		{Type: model.RelCompetitor, RawMention: "Acme Corp", ToCIK: "1"},
		{Type: model.RelCompetitor, RawMention: "Company", ToCIK: "2"},
	}
	out := CleanupFalsePositives(edges)
	if len(out) != 1 || out[0].RawMention != "Acme Corp" {
		t.Errorf("CleanupFalsePositives = %+v, want only the Acme Corp edge", out)
	}
}

func TestCleanupContextSensitive_UnconditionalDrop(t *testing.T) {
	edges := []model.RelationshipEdge{
		{RawMention: "Joint", ToCIK: "jynt-cik"},
		{RawMention: "joint", ToCIK: "jynt-cik"},
	}
	tickers := map[string]string{"jynt-cik": "JYNT"}
	out := CleanupContextSensitive(edges, tickers)
	if len(out) != 0 {
		t.Errorf("expected Joint->JYNT to always be dropped, got %+v", out)
	}
}

func TestCleanupContextSensitive_NonCollidingTickerSurvives(t *testing.T) {
	edges := []model.RelationshipEdge{
		{RawMention: "Joint", ToCIK: "some-other-cik"},
	}
	tickers := map[string]string{"some-other-cik": "OTHR"}
	out := CleanupContextSensitive(edges, tickers)
	if len(out) != 1 {
		t.Errorf("expected edge to survive when resolved ticker isn't the collision, got %+v", out)
	}
}

func TestCleanupContextSensitive_TargetOnlyDroppedInMatchingContext(t *testing.T) {
	tickers := map[string]string{"tgt-cik": "TGT"}

	dropped := []model.RelationshipEdge{
		{RawMention: "Target", ToCIK: "tgt-cik", Context: "the Target Business was evaluated for acquisition"},
	}
	if out := CleanupContextSensitive(dropped, tickers); len(out) != 0 {
		t.Errorf("expected target-business context to be dropped, got %+v", out)
	}

	kept := []model.RelationshipEdge{
		{RawMention: "Target", ToCIK: "tgt-cik", Context: "we compete with Target in general merchandise retail"},
	}
	if out := CleanupContextSensitive(kept, tickers); len(out) != 1 {
		t.Errorf("expected genuine Target Corp mention to survive, got %+v", out)
	}
}

func TestCleanupContextSensitive_NasdaqOnlyDroppedInMatchingContext(t *testing.T) {
	tickers := map[string]string{"ndaq-cik": "NDAQ"}

	dropped := []model.RelationshipEdge{
		{RawMention: "Nasdaq", ToCIK: "ndaq-cik", Context: "our common stock is listed on Nasdaq under the symbol"},
	}
	if out := CleanupContextSensitive(dropped, tickers); len(out) != 0 {
		t.Errorf("expected exchange-listing context to be dropped, got %+v", out)
	}

	kept := []model.RelationshipEdge{
		{RawMention: "Nasdaq", ToCIK: "ndaq-cik", Context: "Nasdaq provides market data services to our subsidiary"},
	}
	if out := CleanupContextSensitive(kept, tickers); len(out) != 1 {
		t.Errorf("expected genuine Nasdaq Inc mention to survive, got %+v", out)
	}
}
