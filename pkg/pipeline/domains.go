package pipeline

import (
	"context"

	"edgarkg/pkg/consensus"
	"edgarkg/pkg/model"
)

// CollectDomains runs the collectdomains stage (spec §4.4): fan out to
// every configured source, take the weighted-consensus winner, and
// enforce the configured minimum-vote floor, demoting a result with too
// few corroborating sources to NoDomain rather than trusting a single
// weak vote.
func CollectDomains(ctx context.Context, d *Deps, cik, ticker, companyName string) model.CompanyResult {
	result := consensus.Collect(ctx, d.Sources.All(), cik, ticker, companyName, d.Tuning.Consensus.MinConfidence)
	if !result.NoDomain && result.Votes < d.Tuning.Consensus.MinVotes {
		result.NoDomain = true
		result.Domain = ""
	}
	return result
}
