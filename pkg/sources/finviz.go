package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"edgarkg/pkg/model"
	"edgarkg/pkg/ratelimit"
)

// FinvizSource scrapes the "Website" link off a Finviz quote page, using
// goquery's jQuery-style traversal the way the teacher's
// pkg/core/edgar/parser.go uses it for filing HTML, instead of the
// original's raw regex over response.text (see
// original_source/domain_status_graph/sources/finviz.py).
type FinvizSource struct {
	client *http.Client
	limits *ratelimit.Registry
}

func (s *FinvizSource) Name() string { return "finviz" }

func (s *FinvizSource) Lookup(ctx context.Context, cik, ticker, companyName string) (model.DomainResult, error) {
	if err := s.limits.Wait(ctx, s.Name(), ratelimit.RateFinviz); err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("https://finviz.com/quote.ashx?t=%s", ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; edgarkg/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.DomainResult{Source: s.Name()}, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("parse html: %w", err)
	}

	var website string
	doc.Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if strings.TrimSpace(td.Text()) != "Website" {
			return true
		}
		link := td.Next().Find("a").First()
		if href, ok := link.Attr("href"); ok {
			website = href
			return false
		}
		return true
	})

	norm, ok := normalizeOrEmpty(website)
	if !ok {
		return model.DomainResult{Source: s.Name()}, nil
	}
	if strings.Contains(norm, "finviz.com") || strings.Contains(norm, "yahoo.com") || strings.Contains(norm, "google.com") {
		return model.DomainResult{Source: s.Name()}, nil
	}

	return model.DomainResult{
		Domain:     norm,
		Source:     s.Name(),
		Confidence: 0.7,
	}, nil
}
