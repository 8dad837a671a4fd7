// Package sources implements the four external company-domain providers
// named in spec §4.1: SEC EDGAR, Yahoo Finance, Finviz, and Finnhub. Each
// source is a pluggable Source, mirroring the teacher's interface-free
// "one function per provider" style in pkg/core/edgar/parser.go but
// lifted behind a shared Source interface so pkg/consensus can fan out
// over all four without a type switch.
//
// Grounded in original_source/public_company_graph/sources/{sec_edgar,
// yfinance}.py and original_source/domain_status_graph/sources/{finviz,
// finnhub}.py. HTTP plumbing (User-Agent, timeout, JSON decoding) follows
// the teacher's pkg/core/edgar/parser.go fetchURL pattern.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"edgarkg/pkg/domain"
	"edgarkg/pkg/model"
	"edgarkg/pkg/ratelimit"
)

// Source weights used by pkg/consensus's weighted voting, mirroring
// domain_consensus.py's SOURCE_WEIGHTS.
const (
	WeightYahoo    = 3.0
	WeightSECEdgar = 2.5
	WeightFinviz   = 2.0
	WeightFinnhub  = 1.0
)

// Source resolves a company's website domain (and, where available, a
// business description) from one external provider.
type Source interface {
	// Name is the source identifier used for weighting and provenance
	// (e.g. "yfinance", "sec_edgar", "finviz", "finnhub").
	Name() string
	// Lookup queries the provider for cik/ticker/name and returns a
	// DomainResult. A not-found result has an empty Domain and zero
	// Confidence — it is never an error; only transport failures are
	// errors, and even those are swallowed by callers that want
	// best-effort consensus (see pkg/consensus).
	Lookup(ctx context.Context, cik, ticker, companyName string) (model.DomainResult, error)
}

const defaultUserAgent = "edgarkg/1.0 (contact: research@edgarkg.example)"

func fetchJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode json: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalizeOrEmpty(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	norm, ok := domain.Normalize(raw)
	if !ok || domain.IsInfrastructure(norm) {
		return "", false
	}
	return norm, true
}

// Registry fans a lookup out to every registered Source.
type Registry struct {
	sources []Source
	limits  *ratelimit.Registry
}

// NewRegistry builds the standard four-source registry with the rate
// limiter gates named in spec §4.1.
func NewRegistry(limits *ratelimit.Registry, httpClient *http.Client, finnhubAPIKey string) *Registry {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Registry{
		limits: limits,
		sources: []Source{
			&YahooSource{client: httpClient, limits: limits},
			&SECEdgarSource{client: httpClient, limits: limits},
			&FinvizSource{client: httpClient, limits: limits},
			&FinnhubSource{client: httpClient, limits: limits, apiKey: finnhubAPIKey},
		},
	}
}

// All returns every configured source, in the fixed order used for
// reporting (not importance — pkg/consensus weights by Name()).
func (r *Registry) All() []Source {
	return r.sources
}
