// Command similarity runs the similarity computation stage (spec §4.9):
// load the aggregate embeddings the embed stage wrote per CIK, compute
// top-K cosine-similar pairs per section type, and write them onto the
// graph as symmetric SIMILAR_* edges.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"edgarkg/pkg/model"
	"edgarkg/pkg/pipeline"
)

// sectionRelation maps the embedding stage's section type key to the
// relationship type and threshold its similarity pairs are written as.
var sectionRelation = map[string]struct {
	relType   model.RelationshipType
	threshold float64
}{
	"business_description": {model.RelSimDesc, 0.6},
	"risk_factors":          {model.RelSimRisk, 0.7},
}

func main() {
	execute := flag.Bool("execute", false, "compute and write similarity edges (default is a dry run)")
	embeddingsDir := flag.String("embeddings-dir", "data/embeddings", "directory of per-CIK aggregate embedding JSON written by the embed stage")
	topK := flag.Int("top-k", 0, "top-K neighbors per node (0 = config default)")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	bySection, err := discoverEmbeddings(*embeddingsDir)
	if err != nil {
		log.Fatalf("similarity: %v", err)
	}

	fmt.Printf("similarity: execute=%v\n", *execute)
	for sectionType, rel := range sectionRelation {
		fmt.Printf("  section=%s relation=%s companies=%d\n", sectionType, rel.relType, len(bySection[sectionType].keys))
	}
	if !*execute {
		return
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("similarity: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}

	ctx := context.Background()
	if err := deps.OpenGraph(ctx); err != nil {
		log.Fatalf("similarity: connect to neo4j: %v", err)
	}
	defer deps.Graph.Close(ctx)

	for sectionType, rel := range sectionRelation {
		bundle := bySection[sectionType]
		if len(bundle.keys) < 2 {
			continue
		}
		edges := pipeline.ComputeSimilarity(rel.relType, bundle.keys, bundle.vectors, rel.threshold, *topK)
		if err := pipeline.LoadSimilarityEdges(ctx, deps, rel.relType, "Company", "cik", edges); err != nil {
			log.Fatalf("similarity: load %s edges: %v", rel.relType, err)
		}
		fmt.Printf("similarity: wrote %d %s edges\n", len(edges), rel.relType)
	}
	fmt.Println("similarity: done.")
}

type embeddingBundle struct {
	keys    []string
	vectors [][]float32
}

// discoverEmbeddings reads every {cik}.json under dir (written by
// writeAggregateEmbeddings in cmd/embed) and groups vectors by section
// type so each relationship type gets its own keys/vectors slice.
func discoverEmbeddings(dir string) (map[string]embeddingBundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read embeddings dir %s: %w", dir, err)
	}

	var ciks []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ciks = append(ciks, e.Name()[:len(e.Name())-len(".json")])
	}
	sort.Strings(ciks)

	result := make(map[string]embeddingBundle)
	for _, cik := range ciks {
		data, err := os.ReadFile(filepath.Join(dir, cik+".json"))
		if err != nil {
			continue
		}
		var aggregates map[string][]float32
		if err := json.Unmarshal(data, &aggregates); err != nil {
			continue
		}
		for sectionType, vec := range aggregates {
			if len(vec) == 0 {
				continue
			}
			bundle := result[sectionType]
			bundle.keys = append(bundle.keys, cik)
			bundle.vectors = append(bundle.vectors, vec)
			result[sectionType] = bundle
		}
	}
	return result, nil
}
