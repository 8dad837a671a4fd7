// Package consensus implements the weighted multi-source voting and
// early-stop algorithm from spec §4.4, grounded in
// original_source/public_company_graph/consensus/domain_consensus.py's
// collect_domains: fan every source out concurrently, accumulate a
// weighted score per candidate domain as results arrive, and stop
// waiting on stragglers once either two sources agree outright or the
// weighted confidence clears a threshold.
package consensus

import (
	"context"
	"sort"
	"sync"

	"edgarkg/pkg/model"
	"edgarkg/pkg/sources"
)

// Weights maps a source name to its reliability weight in the weighted
// vote, mirroring domain_consensus.py's SOURCE_WEIGHTS.
var Weights = map[string]float64{
	"yfinance":  sources.WeightYahoo,
	"sec_edgar": sources.WeightSECEdgar,
	"finviz":    sources.WeightFinviz,
	"finnhub":   sources.WeightFinnhub,
}

func weightOf(source string) float64 {
	if w, ok := Weights[source]; ok {
		return w
	}
	return 1.0
}

// Collect queries every source in all concurrently for (cik, ticker,
// name) and returns the weighted-consensus CompanyResult. earlyStop is
// the weighted-confidence threshold (e.g. 0.75) at which Collect stops
// waiting on remaining sources once it is cleared, as in the original's
// early_stop_confidence parameter.
func Collect(ctx context.Context, all []sources.Source, cik, ticker, companyName string, earlyStop float64) model.CompanyResult {
	type namedResult struct {
		result model.DomainResult
	}
	resultsCh := make(chan namedResult, len(all))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, src := range all {
		src := src
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := src.Lookup(ctx, cik, ticker, companyName)
			if err != nil {
				r = model.DomainResult{Source: src.Name()}
			}
			select {
			case resultsCh <- namedResult{result: r}:
			case <-ctx.Done():
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var collected []model.DomainResult
	domainScores := make(map[string]float64)
	maxPossibleAll := 0.0
	for _, src := range all {
		maxPossibleAll += weightOf(src.Name())
	}

	received := 0
	for nr := range resultsCh {
		received++
		if nr.result.Domain != "" {
			collected = append(collected, nr.result)
			domainScores[nr.result.Domain] += weightOf(nr.result.Source) * nr.result.Confidence
		}

		if len(collected) >= 2 {
			domains := make(map[string]struct{}, len(collected))
			for _, r := range collected {
				domains[r.Domain] = struct{}{}
			}
			if len(domains) == 1 {
				cancel()
				break
			}

			maxScore := 0.0
			for _, sc := range domainScores {
				if sc > maxScore {
					maxScore = sc
				}
			}
			if maxPossibleAll > 0 && maxScore/maxPossibleAll >= earlyStop {
				cancel()
				break
			}
		}

		if received == len(all) {
			break
		}
	}
	// Drain any late stragglers so their goroutines don't leak on a
	// buffered-channel send after we stop reading.
	go func() {
		for range resultsCh {
		}
	}()

	return buildResult(cik, ticker, companyName, collected, domainScores)
}

func buildResult(cik, ticker, companyName string, collected []model.DomainResult, domainScores map[string]float64) model.CompanyResult {
	if len(collected) == 0 || len(domainScores) == 0 {
		return model.CompanyResult{
			CIK:      cik,
			Ticker:   ticker,
			Name:     companyName,
			NoDomain: true,
		}
	}

	domainVotes := make(map[string][]string)
	respondedSources := make(map[string]struct{})
	for _, r := range collected {
		domainVotes[r.Domain] = append(domainVotes[r.Domain], r.Source)
		respondedSources[r.Source] = struct{}{}
	}

	winnerDomain, totalScore := winningDomain(domainScores)
	winnerSources := domainVotes[winnerDomain]

	description, descriptionSource := bestDescription(collected)

	maxPossibleGivenSources := 0.0
	for src := range respondedSources {
		maxPossibleGivenSources += weightOf(src)
	}
	confidence := 0.0
	if maxPossibleGivenSources > 0 {
		confidence = totalScore / maxPossibleGivenSources
		if confidence > 1.0 {
			confidence = 1.0
		}
	}

	return model.CompanyResult{
		CIK:           cik,
		Ticker:        ticker,
		Name:          companyName,
		Domain:        winnerDomain,
		Sources:       winnerSources,
		Confidence:    confidence,
		Votes:         len(winnerSources),
		AllCandidates: domainVotes,
		Description:   description,
		DescriptionSource: descriptionSource,
	}
}

func winningDomain(scores map[string]float64) (string, float64) {
	// Deterministic tie-break: highest score wins; ties broken
	// alphabetically so Collect's output is reproducible across runs.
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestScore := "", -1.0
	for _, k := range keys {
		if scores[k] > bestScore {
			best, bestScore = k, scores[k]
		}
	}
	return best, bestScore
}

func bestDescription(results []model.DomainResult) (string, string) {
	type scored struct {
		score  float64
		source string
	}
	byDesc := make(map[string]scored)
	for _, r := range results {
		if r.Description == "" {
			continue
		}
		w := weightOf(r.Source) * r.Confidence
		if existing, ok := byDesc[r.Description]; ok {
			existing.score += w
			byDesc[r.Description] = existing
		} else {
			byDesc[r.Description] = scored{score: w, source: r.Source}
		}
	}

	descs := make([]string, 0, len(byDesc))
	for d := range byDesc {
		descs = append(descs, d)
	}
	sort.Strings(descs)

	best, bestScore, bestSource := "", -1.0, ""
	for _, d := range descs {
		if byDesc[d].score > bestScore {
			best, bestScore, bestSource = d, byDesc[d].score, byDesc[d].source
		}
	}
	return best, bestSource
}
