package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	jsonrepair "github.com/RealAlexandreAI/json-repair"

	"edgarkg/pkg/model"
	"edgarkg/pkg/ratelimit"
)

// FinnhubSource queries Finnhub's company-profile endpoint. Incomplete
// coverage; mostly useful to corroborate other sources. Grounded in
// original_source/domain_status_graph/sources/finnhub.py.
//
// Finnhub occasionally returns near-miss JSON on rate-limited or
// degraded responses (trailing commas, unquoted keys); when a plain decode
// fails we run the body through jsonrepair.RepairJSON and decode again, the same defensive
// repair the teacher applies to LLM output in
// pkg/core/utils/json_validator.go.
type FinnhubSource struct {
	client *http.Client
	limits *ratelimit.Registry
	apiKey string
}

func (s *FinnhubSource) Name() string { return "finnhub" }

type finnhubProfile struct {
	WebURL          string `json:"weburl"`
	Description     string `json:"description"`
	FinnhubIndustry string `json:"finnhubIndustry"`
}

func (s *FinnhubSource) Lookup(ctx context.Context, cik, ticker, companyName string) (model.DomainResult, error) {
	if s.apiKey == "" {
		return model.DomainResult{Source: s.Name()}, nil
	}
	if err := s.limits.Wait(ctx, s.Name(), ratelimit.RateFinnhub); err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf(
		"https://finnhub.io/api/v1/stock/profile2?symbol=%s&token=%s",
		url.QueryEscape(ticker), url.QueryEscape(s.apiKey),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.DomainResult{Source: s.Name()}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("read body: %w", err)
	}

	var profile finnhubProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		repaired, repairErr := jsonrepair.RepairJSON(string(raw))
		if repairErr != nil {
			return model.DomainResult{Source: s.Name()}, nil
		}
		if err := json.Unmarshal([]byte(repaired), &profile); err != nil {
			return model.DomainResult{Source: s.Name()}, nil
		}
	}

	norm, ok := normalizeOrEmpty(profile.WebURL)
	if !ok {
		return model.DomainResult{Source: s.Name()}, nil
	}

	desc := profile.Description
	if desc == "" {
		desc = profile.FinnhubIndustry
	}

	return model.DomainResult{
		Domain:      norm,
		Source:      s.Name(),
		Confidence:  0.6,
		Description: cleanDescription(desc),
	}, nil
}
