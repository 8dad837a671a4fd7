package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"edgarkg/pkg/model"
	"edgarkg/pkg/ratelimit"
)

// SECEdgarSource reads the "website"/"investorWebsite" fields off SEC's
// submissions API, grounded in
// original_source/public_company_graph/sources/sec_edgar.py. Authoritative
// but slower than the market-data sources.
type SECEdgarSource struct {
	client *http.Client
	limits *ratelimit.Registry
}

func (s *SECEdgarSource) Name() string { return "sec_edgar" }

type secSubmissionsWebsite struct {
	Website         string `json:"website"`
	InvestorWebsite string `json:"investorWebsite"`
}

func (s *SECEdgarSource) Lookup(ctx context.Context, cik, ticker, companyName string) (model.DomainResult, error) {
	if err := s.limits.Wait(ctx, s.Name(), ratelimit.RateSECEdgar); err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("https://data.sec.gov/submissions/CIK%s.json", PadCIK(cik))
	var resp secSubmissionsWebsite
	status, err := fetchJSON(ctx, s.client, url, map[string]string{"Accept": "application/json"}, &resp)
	if err != nil || status != http.StatusOK {
		return model.DomainResult{Source: s.Name()}, nil
	}

	if norm, ok := normalizeOrEmpty(resp.Website); ok {
		return model.DomainResult{
			Domain:     norm,
			Source:     s.Name(),
			Confidence: 0.85,
			Metadata:   map[string]string{"field": "website"},
		}, nil
	}

	if norm, ok := normalizeOrEmpty(resp.InvestorWebsite); ok {
		// Prefer the main domain over an investor-relations subdomain,
		// e.g. "investor.apple.com" -> "apple.com".
		norm = strings.TrimPrefix(norm, "investor.")
		return model.DomainResult{
			Domain:     norm,
			Source:     s.Name(),
			Confidence: 0.75,
			Metadata:   map[string]string{"field": "investorWebsite"},
		}, nil
	}

	return model.DomainResult{Source: s.Name()}, nil
}

// PadCIK zero-pads a CIK to SEC's canonical 10-digit form.
func PadCIK(cik string) string {
	cik = strings.TrimPrefix(strings.TrimSpace(cik), "CIK")
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}
