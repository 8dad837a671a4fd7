// Command query runs the GraphRAG retrieval stage (spec §4.10): embed a
// free-text question, seed with vector search, expand across the graph,
// and print the composed context plus the companies and paths involved.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"edgarkg/pkg/embedding"
	"edgarkg/pkg/pipeline"
	"edgarkg/pkg/rag"
)

func main() {
	question := flag.String("question", "", "the question to answer (required)")
	focusTicker := flag.String("ticker", "", "restrict graph expansion to this company's neighborhood (optional)")
	maxChunks := flag.Int("max-chunks", rag.DefaultMaxChunks, "maximum chunks returned in the composed context")
	maxHops := flag.Int("max-hops", rag.DefaultMaxHops, "maximum graph expansion hop distance")
	noGraph := flag.Bool("no-graph", false, "vector search only, skip multi-hop graph expansion")
	envPath := flag.String("env", ".env", "path to .env secrets file")
	yamlPath := flag.String("config", "config.yaml", "path to config.yaml tuning file")
	hjsonPath := flag.String("override", "config.hjson", "path to config.hjson local override")
	cachePath := flag.String("cache", "data/cache.db", "path to the SQLite artifact cache")
	flag.Parse()

	if *question == "" {
		log.Fatal("query: --question is required")
	}

	deps, c, err := pipeline.Bootstrap(*envPath, *yamlPath, *hjsonPath, *cachePath)
	if err != nil {
		log.Fatalf("query: bootstrap: %v", err)
	}
	if c != nil {
		defer c.Close()
	}

	ctx := context.Background()
	provider, err := embedding.NewProvider(ctx, deps.Secrets.GeminiAPIKey, "")
	if err != nil {
		log.Fatalf("query: create provider: %v", err)
	}

	if err := deps.OpenGraph(ctx); err != nil {
		log.Fatalf("query: connect to neo4j: %v", err)
	}
	defer deps.Graph.Close(ctx)

	result, err := pipeline.Query(ctx, deps, provider, *question, *focusTicker, *maxChunks, *maxHops, !*noGraph)
	if err != nil {
		log.Fatalf("query: %v", err)
	}

	fmt.Println("--- context ---")
	fmt.Println(result.Context)
	fmt.Println("--- companies ---")
	for _, cik := range result.Companies {
		fmt.Println(" ", cik)
	}
	if len(result.RelatedCompanies) > 0 {
		fmt.Println("--- related companies (graph expansion) ---")
		for _, cik := range result.RelatedCompanies {
			fmt.Println(" ", cik)
		}
	}
	if len(result.Paths) > 0 {
		fmt.Println("--- expansion paths ---")
		for _, p := range result.Paths {
			fmt.Printf("  %s --%s(hop %d)--> %s\n", p.BridgeCompanyCIK, p.EdgeType, p.HopDistance, p.CompanyCIK)
		}
	}
}
