package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edgarkg/pkg/cache"
	"edgarkg/pkg/filing"
)

// DownloadOptions mirrors the download10k CLI's flags (spec §6): the
// date window to search, whether to force a redownload past the
// negative-result cache, and whether to skip the cache read entirely.
type DownloadOptions struct {
	FilingDateStart time.Time
	FilingDateEnd   time.Time
	Force           bool
	NoPreCheck      bool
	PortfoliosDir   string
	FilingsDir      string
}

// DownloadTenK runs spec §4.5's acquisition pipeline for one CIK.
// --force clears any cached negative result before the pre-check;
// --no-pre-check bypasses the negative-result cache read (but still
// writes one on a fresh empty result, so a later un-forced run benefits).
func DownloadTenK(ctx context.Context, d *Deps, cik string, opts DownloadOptions) (filing.AcquireResult, error) {
	if opts.Force && d.Cache != nil {
		_ = d.Cache.Delete(cache.NS10KExtracted, "no10k:"+cik)
	}

	client := d.Filing
	if opts.NoPreCheck {
		client = filing.NewClient(d.Limits, nil)
	}

	res, err := client.Acquire(ctx, cik, d.Secrets.CommercialProviderAPIKey, opts.PortfoliosDir, opts.FilingsDir, opts.FilingDateStart, opts.FilingDateEnd)
	if opts.NoPreCheck && d.Cache != nil && errors.Is(err, filing.ErrNoTenKInRange) {
		_ = d.Cache.Set(cache.NS10KExtracted, "no10k:"+cik, []byte("1"), cache.TTLNegative)
	}
	if err != nil {
		return filing.AcquireResult{}, fmt.Errorf("acquire 10-K for cik %s: %w", cik, err)
	}
	return res, nil
}
