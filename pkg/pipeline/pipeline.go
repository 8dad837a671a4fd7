// Package pipeline wires every stage package (filing, extract, consensus,
// graph, embedding, similarity, rag) behind the shared dependency set each
// cmd/* stage binary needs, mirroring the way the teacher's cmd/pipeline/
// main.go wires edgar/llm/calc together inline but pulled out into a
// reusable package so each stage can run as its own CLI (spec §6) instead
// of one monolithic main().
package pipeline

import (
	"context"
	"net/http"
	"time"

	"edgarkg/pkg/cache"
	"edgarkg/pkg/config"
	"edgarkg/pkg/embedding"
	"edgarkg/pkg/enrich"
	"edgarkg/pkg/extract"
	"edgarkg/pkg/filing"
	"edgarkg/pkg/graph"
	"edgarkg/pkg/ratelimit"
	"edgarkg/pkg/sources"
)

// Deps holds every shared collaborator a stage needs. Stage functions take
// *Deps plus their own inputs rather than a god-object method set, so each
// cmd/* binary only touches the fields its stage actually uses.
type Deps struct {
	Tuning  config.Tuning
	Secrets config.Secrets

	Cache   *cache.Cache
	Limits  *ratelimit.Registry
	Filing  *filing.Client
	Sources *sources.Registry
	Docs    *extract.DocumentCache
	Enrich  *enrich.Fetcher

	Graph *graph.Store // nil until OpenGraph is called
}

// NewDeps builds the shared, non-Neo4j collaborators from tuning/secrets
// and an already-opened cache. Graph is left nil; call OpenGraph
// separately since not every stage (e.g. download10k) touches Neo4j.
func NewDeps(tuning config.Tuning, secrets config.Secrets, c *cache.Cache) *Deps {
	limits := ratelimit.NewRegistry()
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &Deps{
		Tuning:  tuning,
		Secrets: secrets,
		Cache:   c,
		Limits:  limits,
		Filing:  filing.NewClient(limits, c),
		Sources: sources.NewRegistry(limits, httpClient, secrets.FinnhubAPIKey),
		Docs:    extract.NewDocumentCache(),
		Enrich:  enrich.NewFetcher(limits, c),
	}
}

// OpenGraph connects to Neo4j using d.Secrets and ensures its constraints
// exist, idempotently. Stages that touch the graph call this once at
// startup; d.Graph is nil for stages that never reach it.
func (d *Deps) OpenGraph(ctx context.Context) error {
	store, err := graph.Open(ctx, d.Secrets.Neo4jURI, d.Secrets.Neo4jUser, d.Secrets.Neo4jPassword, "neo4j")
	if err != nil {
		return err
	}
	if err := store.EnsureConstraints(ctx); err != nil {
		return err
	}
	d.Graph = store
	return nil
}

// WorkerCount returns the configured worker pool size: spec §6's default
// of 8, raised to 16 whenever a commercial filing provider is configured.
func (d *Deps) WorkerCount(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if d.Secrets.HasCommercialProvider() {
		return d.Tuning.Workers.Max
	}
	return d.Tuning.Workers.Default
}

// Bootstrap is the common startup sequence every cmd/* stage binary
// runs first: load the three-layer config, open the SQLite cache, and
// build Deps. cachePath empty disables the cache.
func Bootstrap(envPath, yamlPath, hjsonPath, cachePath string) (*Deps, *cache.Cache, error) {
	tuning, secrets, err := config.Load(envPath, yamlPath, hjsonPath)
	if err != nil {
		return nil, nil, err
	}

	var c *cache.Cache
	if cachePath != "" {
		c, err = cache.Open(cachePath)
		if err != nil {
			return nil, nil, err
		}
	}

	return NewDeps(tuning, secrets, c), c, nil
}
