package consensus

import (
	"context"
	"testing"

	"edgarkg/pkg/model"
	"edgarkg/pkg/sources"
)

type fakeSource struct {
	name   string
	result model.DomainResult
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Lookup(ctx context.Context, cik, ticker, companyName string) (model.DomainResult, error) {
	r := f.result
	r.Source = f.name
	return r, nil
}

func TestCollectAllAgree(t *testing.T) {
	srcs := []sources.Source{
		fakeSource{name: "yfinance", result: model.DomainResult{Domain: "apple.com", Confidence: 0.9}},
		fakeSource{name: "sec_edgar", result: model.DomainResult{Domain: "apple.com", Confidence: 0.85}},
		fakeSource{name: "finviz", result: model.DomainResult{Domain: "apple.com", Confidence: 0.7}},
		fakeSource{name: "finnhub", result: model.DomainResult{Domain: "apple.com", Confidence: 0.6}},
	}

	result := Collect(context.Background(), srcs, "0000320193", "AAPL", "Apple Inc.", 0.75)
	if result.NoDomain {
		t.Fatal("expected a domain, got NoDomain")
	}
	if result.Domain != "apple.com" {
		t.Errorf("Domain = %q, want apple.com", result.Domain)
	}
	if result.Confidence < 0.9 {
		t.Errorf("Confidence = %v, want close to 1.0 for full agreement", result.Confidence)
	}
}

func TestCollectWeightedDisagreement(t *testing.T) {
	// Yahoo (weight 3.0) disagrees with finviz+finnhub (weights 2.0+1.0);
	// yahoo's higher reliability should still win.
	srcs := []sources.Source{
		fakeSource{name: "yfinance", result: model.DomainResult{Domain: "apple.com", Confidence: 0.9}},
		fakeSource{name: "finviz", result: model.DomainResult{Domain: "appleinc.com", Confidence: 0.7}},
		fakeSource{name: "finnhub", result: model.DomainResult{Domain: "appleinc.com", Confidence: 0.6}},
	}

	result := Collect(context.Background(), srcs, "0000320193", "AAPL", "Apple Inc.", 0.75)
	if result.Domain != "apple.com" {
		t.Errorf("Domain = %q, want apple.com (higher-weighted source)", result.Domain)
	}
}

func TestCollectNoResultsIsNoDomain(t *testing.T) {
	srcs := []sources.Source{
		fakeSource{name: "yfinance", result: model.DomainResult{}},
		fakeSource{name: "finviz", result: model.DomainResult{}},
	}

	result := Collect(context.Background(), srcs, "0000000000", "NONE", "Nonexistent Corp", 0.75)
	if !result.NoDomain {
		t.Error("expected NoDomain = true when no source returns a domain")
	}
}

func TestCollectPrefersHigherWeightedDescription(t *testing.T) {
	srcs := []sources.Source{
		fakeSource{name: "yfinance", result: model.DomainResult{
			Domain: "apple.com", Confidence: 0.9, Description: "Apple designs consumer electronics.",
		}},
		fakeSource{name: "finnhub", result: model.DomainResult{
			Domain: "apple.com", Confidence: 0.6, Description: "Technology hardware company.",
		}},
	}

	result := Collect(context.Background(), srcs, "0000320193", "AAPL", "Apple Inc.", 0.75)
	if result.Description != "Apple designs consumer electronics." {
		t.Errorf("Description = %q, want yfinance's description (higher weight)", result.Description)
	}
	if result.DescriptionSource != "yfinance" {
		t.Errorf("DescriptionSource = %q, want yfinance", result.DescriptionSource)
	}
}
