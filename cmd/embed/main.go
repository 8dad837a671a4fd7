// Command embed runs the embedding stage (spec §4.8): chunks each
// company's business description and risk factors, embeds every chunk
// plus a cache-validated aggregate vector, and loads the resulting
// Document/Chunk nodes and aggregated Company embeddings onto the graph.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"edgarkg/pkg/embedding"
	"edgarkg/pkg/extract"
	"edgarkg/pkg/pipeline"
	"edgarkg/pkg/stats"
)

func main() {
	execute := flag.Bool("execute", false, "perform embedding (default is a dry run)")
	extractedDir := flag.String("extracted-dir", "data/extracted", "directory of extract10k JSON records")
	embeddingsDir := flag.String("embeddings-dir", "data/embeddings", "directory to write one aggregate-embedding JSON record per CIK, consumed by the similarity stage")
	year := flag.Int("year", 0, "fiscal year to tag each document with (required with --execute)")
	limit := flag.Int("limit", 0, "process at most N companies (0 = no limit)")
	workers := flag.Int("workers", 0, "worker pool size (0 = config default)")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	ciks, err := discoverExtracted(*extractedDir)
	if err != nil {
		log.Fatalf("embed: %v", err)
	}
	if *limit > 0 && len(ciks) > *limit {
		ciks = ciks[:*limit]
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("embed: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}

	fmt.Printf("embed: %d companies, execute=%v\n", len(ciks), *execute)
	if !*execute {
		for _, cik := range ciks {
			fmt.Printf("  [dry-run] would embed business description + risk factors for %s\n", cik)
		}
		return
	}
	if *year == 0 {
		log.Fatal("embed: --year is required with --execute")
	}

	ctx := context.Background()
	provider, err := embedding.NewProvider(ctx, deps.Secrets.GeminiAPIKey, "")
	if err != nil {
		log.Fatalf("embed: create provider: %v", err)
	}
	engine := embedding.NewEngine(provider, deps.Cache, deps.Tuning.Chunking.TokensPerChunk, deps.Tuning.Chunking.OverlapTokens, embedding.AggWeightedDecay)

	if err := deps.OpenGraph(ctx); err != nil {
		log.Fatalf("embed: connect to neo4j: %v", err)
	}
	defer deps.Graph.Close(ctx)

	if err := os.MkdirAll(*embeddingsDir, 0o755); err != nil {
		log.Fatalf("embed: create embeddings dir: %v", err)
	}

	counters := stats.NewCounters()
	err = stats.RunWorkers(ctx, ciks, deps.WorkerCount(*workers), func(ctx context.Context, cik string) error {
		counters.Incr("processed", 1)
		rec, ok := readExtracted(*extractedDir, cik)
		if !ok {
			counters.Incr("failed", 1)
			return nil
		}

		aggregates := make(map[string][]float32)
		for sectionType, text := range map[string]string{
			"business_description": rec.BusinessDescription,
			"risk_factors":          rec.RiskFactors,
		} {
			if text == "" {
				continue
			}
			doc, chunks, aggregate, err := pipeline.EmbedSection(ctx, provider, engine, cik, sectionType, *year, text, deps.Tuning.Chunking.TokensPerChunk, deps.Tuning.Chunking.OverlapTokens)
			if err != nil {
				counters.Incr("failed", 1)
				log.Printf("embed: cik %s section %s: %v", cik, sectionType, err)
				continue
			}
			if err := pipeline.LoadDocument(ctx, deps, doc, chunks); err != nil {
				counters.Incr("failed", 1)
				log.Printf("embed: load document for cik %s section %s: %v", cik, sectionType, err)
				continue
			}
			aggregates[sectionType] = aggregate
			counters.Incr("documents_embedded", 1)
		}
		if len(aggregates) > 0 {
			if err := writeAggregateEmbeddings(*embeddingsDir, cik, aggregates); err != nil {
				return fmt.Errorf("write aggregate embeddings for cik %s: %w", cik, err)
			}
		}
		counters.Incr("succeeded", 1)
		return nil
	})
	if err != nil {
		log.Fatalf("embed: %v", err)
	}

	snap := counters.Snapshot()
	fmt.Printf("embed: done. processed=%d succeeded=%d failed=%d documents=%d\n", snap["processed"], snap["succeeded"], snap["failed"], snap["documents_embedded"])
}

type extractedRecord struct {
	CIK                 string            `json:"cik"`
	BusinessDescription string            `json:"business_description,omitempty"`
	RiskFactors         string            `json:"risk_factors,omitempty"`
	Mentions            []extract.Mention `json:"mentions,omitempty"`
}

func discoverExtracted(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read extracted dir %s: %w", dir, err)
	}
	var ciks []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		cik := e.Name()
		if filepath.Ext(cik) == ".json" {
			ciks = append(ciks, cik[:len(cik)-len(".json")])
		}
	}
	return ciks, nil
}

func readExtracted(dir, cik string) (extractedRecord, bool) {
	data, err := os.ReadFile(filepath.Join(dir, cik+".json"))
	if err != nil {
		return extractedRecord{}, false
	}
	var rec extractedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return extractedRecord{}, false
	}
	return rec, true
}

// writeAggregateEmbeddings persists cik's section-keyed aggregate vectors
// so the similarity stage can load them without re-querying the graph.
func writeAggregateEmbeddings(dir, cik string, aggregates map[string][]float32) error {
	data, err := json.Marshal(aggregates)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cik+".json"), data, 0o644)
}
