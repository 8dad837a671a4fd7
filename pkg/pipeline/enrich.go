package pipeline

import (
	"context"

	"edgarkg/pkg/enrich"
)

// EnrichCompany runs the company enrichment stage (spec §2): fetch
// SEC/Yahoo in parallel, merge by priority order, and cache the merged
// record, delegating entirely to enrich.Fetcher.
func EnrichCompany(ctx context.Context, d *Deps, cik, ticker string) (enrich.Result, error) {
	return d.Enrich.EnrichCompany(ctx, cik, ticker)
}
