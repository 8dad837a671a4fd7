// Package enrich implements spec §2's company enrichment stage: a
// parallel SEC EDGAR + Yahoo Finance fetch, merged by priority order,
// with the merged record cached under pkg/cache's NSCompanyProperties
// namespace.
//
// Grounded in original_source/public_company_graph/company/enrichment.py:
// fetch_sec_company_info (SIC/NAICS off the submissions endpoint),
// fetch_yahoo_finance_info (sector/industry/market cap/revenue/
// employees/HQ off quoteSummary), and merge_company_data's priority
// order — Yahoo first since it is the more complete source for
// financials, then SEC overrides SIC/NAICS since it is the more
// authoritative source for industry classification. The original's
// third source, Wikidata, is an unimplemented stub there (its own
// fetch_wikidata_info is a literal TODO) and is dropped here rather
// than carried forward as dead code — see DESIGN.md.
//
// HTTP plumbing mirrors pkg/sources' fetchJSON/User-Agent pattern rather
// than introducing a second HTTP helper; rate limiting goes through
// pkg/ratelimit under its own sec_edgar_enrichment/yfinance_enrichment
// buckets, separate from the ones pkg/sources uses.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"edgarkg/pkg/cache"
	"edgarkg/pkg/model"
	"edgarkg/pkg/ratelimit"
	"edgarkg/pkg/sources"
)

const (
	secSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	yahooQuoteSummary = "https://query2.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=assetProfile,summaryDetail,financialData&formatted=false"
	defaultUserAgent  = "edgarkg/1.0 (contact: research@edgarkg.example)"

	// CacheTTL matches spec §4.3's "enriched company properties" entry:
	// refreshed monthly, since SIC/NAICS/sector rarely change faster
	// than that.
	CacheTTL = 30 * 24 * time.Hour
)

// Result is the merged enrichment record for one company, ready to
// overlay onto a model.Company.
type Result struct {
	CIK        string   `json:"cik"`
	SIC        string   `json:"sic,omitempty"`
	NAICS      string   `json:"naics,omitempty"`
	Sector     string   `json:"sector,omitempty"`
	Industry   string   `json:"industry,omitempty"`
	MarketCap  float64  `json:"market_cap,omitempty"`
	Revenue    float64  `json:"revenue,omitempty"`
	Employees  int64    `json:"employees,omitempty"`
	HQLocation string   `json:"hq_location,omitempty"`
	Sources    []string `json:"sources,omitempty"`
}

// ApplyTo overlays any non-zero enrichment fields onto company, leaving
// fields Result left empty untouched.
func (r Result) ApplyTo(c *model.Company) {
	if r.SIC != "" {
		c.SIC = r.SIC
	}
	if r.NAICS != "" {
		c.NAICS = r.NAICS
	}
	if r.Sector != "" {
		c.Sector = r.Sector
	}
	if r.Industry != "" {
		c.Industry = r.Industry
	}
	if r.MarketCap != 0 {
		c.MarketCap = r.MarketCap
	}
	if r.Revenue != 0 {
		c.Revenue = r.Revenue
	}
	if r.Employees != 0 {
		c.Employees = r.Employees
	}
	if r.HQLocation != "" {
		c.HQLocation = r.HQLocation
	}
}

// Fetcher runs the parallel SEC/Yahoo enrichment fetch.
type Fetcher struct {
	http   *http.Client
	limits *ratelimit.Registry
	cache  *cache.Cache
}

// NewFetcher builds a Fetcher. c may be nil to disable caching (every
// EnrichCompany call then re-fetches both sources).
func NewFetcher(limits *ratelimit.Registry, c *cache.Cache) *Fetcher {
	return &Fetcher{
		http:   &http.Client{Timeout: 10 * time.Second},
		limits: limits,
		cache:  c,
	}
}

// EnrichCompany fans the SEC and Yahoo fetches out in parallel, merges
// them by priority order, and caches the merged record under cik. A
// cache hit skips both fetches entirely.
func (f *Fetcher) EnrichCompany(ctx context.Context, cik, ticker string) (Result, error) {
	if f.cache != nil {
		if raw, ok := f.cache.Get(cache.NSCompanyProperties, cik); ok {
			var cached Result
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var sec secResult
	var yahoo yahooResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := f.fetchSEC(gctx, cik)
		sec = r
		return err
	})
	g.Go(func() error {
		r, err := f.fetchYahoo(gctx, ticker)
		yahoo = r
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("enrich cik %s: %w", cik, err)
	}

	merged := mergeCompanyData(cik, sec, yahoo)

	if f.cache != nil {
		if data, err := json.Marshal(merged); err == nil {
			_ = f.cache.Set(cache.NSCompanyProperties, cik, data, CacheTTL)
		}
	}
	return merged, nil
}

// mergeCompanyData applies merge_company_data's priority order: start
// from Yahoo (most complete for financials/HQ), then let SEC override
// SIC/NAICS (the more authoritative classification source).
func mergeCompanyData(cik string, sec secResult, yahoo yahooResult) Result {
	merged := Result{
		CIK:        cik,
		Sector:     yahoo.Sector,
		Industry:   yahoo.Industry,
		MarketCap:  yahoo.MarketCap,
		Revenue:    yahoo.Revenue,
		Employees:  yahoo.Employees,
		HQLocation: yahoo.HQLocation,
	}
	if sec.SIC != "" {
		merged.SIC = sec.SIC
	}
	if sec.NAICS != "" {
		merged.NAICS = sec.NAICS
	}
	var srcs []string
	if sec.found {
		srcs = append(srcs, "SEC_EDGAR")
	}
	if yahoo.found {
		srcs = append(srcs, "YAHOO_FINANCE")
	}
	merged.Sources = srcs
	return merged
}

type secResult struct {
	SIC   string
	NAICS string
	found bool
}

// secSubmissions mirrors just the fields enrichment needs off SEC's
// submissions document; sic/naics may be a plain string or, per the
// original's defensive isinstance check, a "code - description" array.
type secSubmissions struct {
	SIC   json.RawMessage `json:"sic"`
	NAICS json.RawMessage `json:"naics"`
}

func (f *Fetcher) fetchSEC(ctx context.Context, cik string) (secResult, error) {
	if err := f.limits.Wait(ctx, "sec_edgar_enrichment", ratelimit.RateSECEdgar); err != nil {
		return secResult{}, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf(secSubmissionsURL, sources.PadCIK(cik))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return secResult{}, fmt.Errorf("build sec request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return secResult{}, nil // transient network failure: degrade to Yahoo-only, not a hard error
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return secResult{}, nil
	}

	var sub secSubmissions
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return secResult{}, nil
	}

	return secResult{
		SIC:   normalizeIndustryCode(sub.SIC, 4),
		NAICS: normalizeIndustryCode(sub.NAICS, 6),
		found: true,
	}, nil
}

// normalizeIndustryCode extracts the numeric prefix of a SIC/NAICS code,
// zero-padded to width digits, per normalize_industry_codes. raw may
// decode as a bare string ("3571") or an array whose first element is
// the code (["3571", "Description"]).
func normalizeIndustryCode(raw json.RawMessage, width int) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var arr []string
		if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
			return ""
		}
		s = arr[0]
	}

	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	code := digits.String()
	if len(code) == 0 {
		return ""
	}
	if len(code) > width {
		code = code[:width]
	}
	for len(code) < width {
		code = "0" + code
	}
	return code
}

type yahooResult struct {
	Sector     string
	Industry   string
	MarketCap  float64
	Revenue    float64
	Employees  int64
	HQLocation string
	found      bool
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector            string `json:"sector"`
				Industry          string `json:"industry"`
				FullTimeEmployees int64  `json:"fullTimeEmployees"`
				City              string `json:"city"`
				State             string `json:"state"`
				Country           string `json:"country"`
			} `json:"assetProfile"`
			SummaryDetail struct {
				MarketCap float64 `json:"marketCap"`
			} `json:"summaryDetail"`
			FinancialData struct {
				TotalRevenue float64 `json:"totalRevenue"`
			} `json:"financialData"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

func (f *Fetcher) fetchYahoo(ctx context.Context, ticker string) (yahooResult, error) {
	if ticker == "" {
		return yahooResult{}, nil
	}
	if err := f.limits.Wait(ctx, "yfinance_enrichment", ratelimit.RateYahoo); err != nil {
		return yahooResult{}, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf(yahooQuoteSummary, ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return yahooResult{}, fmt.Errorf("build yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.http.Do(req)
	if err != nil {
		return yahooResult{}, nil // transient network failure: degrade to SEC-only, not a hard error
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return yahooResult{}, nil
	}

	var parsed yahooQuoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil || len(parsed.QuoteSummary.Result) == 0 {
		return yahooResult{}, nil
	}

	r := parsed.QuoteSummary.Result[0]
	return yahooResult{
		Sector:     r.AssetProfile.Sector,
		Industry:   r.AssetProfile.Industry,
		MarketCap:  r.SummaryDetail.MarketCap,
		Revenue:    r.FinancialData.TotalRevenue,
		Employees:  r.AssetProfile.FullTimeEmployees,
		HQLocation: joinHQLocation(r.AssetProfile.City, r.AssetProfile.State, r.AssetProfile.Country),
		found:      true,
	}, nil
}

func joinHQLocation(city, state, country string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{city, state, country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
