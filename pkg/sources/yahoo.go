package sources

import (
	"context"
	"fmt"
	"net/http"

	"edgarkg/pkg/model"
	"edgarkg/pkg/ratelimit"
)

// YahooSource queries Yahoo Finance's public quoteSummary endpoint, the
// same data yfinance.py reads through its own HTTP layer underneath
// `yf.Ticker(ticker).info`. Go has no equivalent to the yfinance package,
// so this hits the underlying JSON API directly, which the Python
// library itself wraps.
type YahooSource struct {
	client *http.Client
	limits *ratelimit.Registry
}

func (s *YahooSource) Name() string { return "yfinance" }

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Website          string `json:"website"`
				LongBusinessSumm string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

func (s *YahooSource) Lookup(ctx context.Context, cik, ticker, companyName string) (model.DomainResult, error) {
	if err := s.limits.Wait(ctx, s.Name(), ratelimit.RateYahoo); err != nil {
		return model.DomainResult{Source: s.Name()}, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf(
		"https://query2.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=assetProfile",
		ticker,
	)
	var resp yahooQuoteSummaryResponse
	status, err := fetchJSON(ctx, s.client, url, nil, &resp)
	if err != nil || status != http.StatusOK || len(resp.QuoteSummary.Result) == 0 {
		return model.DomainResult{Source: s.Name()}, nil
	}

	profile := resp.QuoteSummary.Result[0].AssetProfile
	norm, ok := normalizeOrEmpty(profile.Website)
	if !ok {
		return model.DomainResult{Source: s.Name()}, nil
	}

	desc := cleanDescription(profile.LongBusinessSumm)
	return model.DomainResult{
		Domain:      norm,
		Source:      s.Name(),
		Confidence:  0.9,
		Description: desc,
		Metadata:    map[string]string{"raw_website": profile.Website},
	}, nil
}
