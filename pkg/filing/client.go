// Package filing implements SEC EDGAR filing discovery, selection, and
// safe extraction for the downloadtenk/extracttenk pipeline stages
// (spec §4.1, §4.5).
//
// Client and its submissions types are adapted from the teacher's
// pkg/core/ingest/edgar.go (a clean, already-generalized EDGAR client,
// preferred over the teacher's much larger pkg/core/edgar/parser.go,
// whose iXBRL financial-statement-merging logic belongs to valuation
// extraction and has no home in this spec — see DESIGN.md). CIK lookup
// is adapted from the same file's LookupCIKByTicker, backed by
// pkg/cache instead of an uncached-per-call HTTP fetch.
package filing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"edgarkg/pkg/cache"
	"edgarkg/pkg/ratelimit"
)

const (
	submissionsURL    = "https://data.sec.gov/submissions/CIK%s.json"
	filingArchiveURL  = "https://www.sec.gov/Archives/edgar/data/%s/%s"
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	defaultUserAgent  = "edgarkg/1.0 (contact: research@edgarkg.example)"
)

// CompanyInfo is the top-level SEC submissions response.
type CompanyInfo struct {
	CIK            string       `json:"cik"`
	EntityType     string       `json:"entityType"`
	SIC            string       `json:"sic"`
	SICDescription string       `json:"sicDescription"`
	Name           string       `json:"name"`
	Tickers        []string     `json:"tickers"`
	Exchanges      []string     `json:"exchanges"`
	Filings        FilingsBlock `json:"filings"`
}

// FilingsBlock holds the "recent" filings array-of-structs payload.
type FilingsBlock struct {
	Recent RecentFilings `json:"recent"`
}

// RecentFilings are SEC's parallel arrays, one element per filing.
type RecentFilings struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
	Size            []int    `json:"size"`
}

// Filing is one denormalized filing entry with its resolved download URL.
type Filing struct {
	AccessionNumber string
	FilingDate      time.Time
	ReportDate      time.Time
	FormType        string
	PrimaryDocument string
	Size            int
	URL             string
}

// Client is a rate-limited, cache-backed SEC EDGAR client.
type Client struct {
	http   *http.Client
	limits *ratelimit.Registry
	cache  *cache.Cache
}

// NewClient builds a Client. cache may be nil to disable the ticker
// bootstrap cache (every LookupCIK call then re-fetches company_tickers.json).
func NewClient(limits *ratelimit.Registry, c *cache.Cache) *Client {
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		limits: limits,
		cache:  c,
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limits.Wait(ctx, "sec_edgar", ratelimit.RateSECEdgar); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sec edgar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sec edgar returned status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// FetchCompanyInfo retrieves the submissions document for a (possibly
// unpadded) CIK.
func (c *Client) FetchCompanyInfo(ctx context.Context, cik string) (*CompanyInfo, error) {
	padded := padCIK(cik)
	body, err := c.get(ctx, fmt.Sprintf(submissionsURL, padded))
	if err != nil {
		return nil, err
	}

	var info CompanyInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parse submissions response: %w", err)
	}
	return &info, nil
}

// GetFilings returns filings of the given form types (nil/empty = all),
// most recent first, optionally bounded to [start, end] by filing date
// (zero time.Time means unbounded on that side), capped at limit (0 =
// unlimited).
func (c *Client) GetFilings(info *CompanyInfo, formTypes []string, start, end time.Time, limit int) []Filing {
	recent := info.Filings.Recent
	formSet := make(map[string]bool, len(formTypes))
	for _, ft := range formTypes {
		formSet[ft] = true
	}

	var filings []Filing
	for i := range recent.AccessionNumber {
		form := recent.Form[i]
		if len(formTypes) > 0 {
			matches := formSet[form]
			// "10-K" search also matches amendments, mirroring the
			// teacher's parser.go isMatch heuristic.
			if !matches && formSet["10-K"] && (form == "10-KA" || form == "10-K/A") {
				matches = true
			}
			if !matches {
				continue
			}
		}

		filingDate, _ := time.Parse("2006-01-02", recent.FilingDate[i])
		reportDate, _ := time.Parse("2006-01-02", recent.ReportDate[i])

		if !start.IsZero() && filingDate.Before(start) {
			continue
		}
		if !end.IsZero() && filingDate.After(end) {
			continue
		}

		accessionNoDashes := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
		url := fmt.Sprintf(filingArchiveURL, info.CIK, accessionNoDashes+"/"+recent.PrimaryDocument[i])

		filings = append(filings, Filing{
			AccessionNumber: recent.AccessionNumber[i],
			FilingDate:      filingDate,
			ReportDate:      reportDate,
			FormType:        form,
			PrimaryDocument: recent.PrimaryDocument[i],
			Size:            recent.Size[i],
			URL:             url,
		})
	}

	// SEC returns filings newest-first already; re-sort defensively in
	// case a future response shape changes that assumption.
	for i := 1; i < len(filings); i++ {
		for j := i; j > 0 && filings[j].FilingDate.After(filings[j-1].FilingDate); j-- {
			filings[j], filings[j-1] = filings[j-1], filings[j]
		}
	}

	if limit > 0 && len(filings) > limit {
		filings = filings[:limit]
	}
	return filings
}

type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

const tickerCacheKey = "sec_company_tickers"

// LookupCIK resolves ticker to its zero-padded CIK, using the namespaced
// cache as a day-scale bootstrap cache for SEC's full ticker map (the
// map itself is ~1MB and changes rarely, so refetching per-ticker would
// be wasteful — adapted from the teacher's lazy-load tickerCache in
// pkg/core/edgar/parser.go, generalized to a shared persistent cache
// instead of an in-process map lost on restart).
func (c *Client) LookupCIK(ctx context.Context, ticker string) (string, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	mapping, err := c.tickerMap(ctx)
	if err != nil {
		return "", err
	}
	if cik, ok := mapping[ticker]; ok {
		return cik, nil
	}
	return "", fmt.Errorf("ticker %s not found in SEC database", ticker)
}

func (c *Client) tickerMap(ctx context.Context) (map[string]string, error) {
	if c.cache != nil {
		if raw, ok := c.cache.Get(cache.NSCompanyDomains, tickerCacheKey); ok {
			var mapping map[string]string
			if err := json.Unmarshal(raw, &mapping); err == nil {
				return mapping, nil
			}
		}
	}

	body, err := c.get(ctx, companyTickersURL)
	if err != nil {
		return nil, fmt.Errorf("fetch company tickers: %w", err)
	}

	var resp map[string]tickerEntry
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse ticker map: %w", err)
	}

	mapping := make(map[string]string, len(resp))
	for _, entry := range resp {
		mapping[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
	}

	if c.cache != nil {
		if raw, err := json.Marshal(mapping); err == nil {
			_ = c.cache.Set(cache.NSCompanyDomains, tickerCacheKey, raw, 24*time.Hour)
		}
	}
	return mapping, nil
}

func padCIK(cik string) string {
	cik = strings.TrimLeft(strings.TrimSpace(cik), "0")
	return fmt.Sprintf("%010s", cik)
}
