// Package rag implements the GraphRAG retrieval pipeline from spec §4.10:
// vector-seeded chunk search, multi-hop graph expansion over a fixed
// relationship-type set, related-company enrichment, merge/dedup, and
// context composition.
//
// Grounded in original_source/public_company_graph/graphrag/queries.py
// (search_documents' vector-index-with-brute-force-fallback pattern,
// search_with_graph_context's company-relationship traversal) and
// pkg/similarity's cosine math for the brute-force path. The driver
// itself is github.com/neo4j/neo4j-go-driver/v5, shared with pkg/graph.
package rag

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"edgarkg/pkg/model"
)

const (
	vectorIndexName = "chunk_embedding_vector"

	// BruteForceCap bounds the fallback scan when the vector index is
	// unavailable (spec §4.10).
	BruteForceCap = 10000

	// DefaultMinSimilarity is the seed-stage acceptance floor.
	DefaultMinSimilarity = 0.5
	// EnrichMinSimilarity is the looser floor applied to related-company
	// chunks pulled in during graph expansion.
	EnrichMinSimilarity = 0.35

	DefaultMaxChunks = 10
	DefaultMaxHops   = 2
)

// expansionEdgeTypes is the fixed set of relationship types multi-hop
// expansion traverses (spec §4.10).
var expansionEdgeTypes = []model.RelationshipType{
	model.RelCompetitor, model.RelPartner, model.RelSupplier, model.RelCustomer,
	model.RelSimDesc, model.RelSimRisk, model.RelSimIndustry,
}

// edgeTypePriority ranks edge types for tie-breaking within a hop
// distance: supplier > customer > partner > competitor > semantic-similar.
var edgeTypePriority = map[model.RelationshipType]int{
	model.RelSupplier:    0,
	model.RelCustomer:    1,
	model.RelPartner:     2,
	model.RelCompetitor:  3,
	model.RelSimDesc:     4,
	model.RelSimRisk:     4,
	model.RelSimIndustry: 4,
}

// Chunk is one retrieved chunk, already scored and attributed.
type Chunk struct {
	ChunkID       string
	Text          string
	ChunkIndex    int
	DocID         string
	SectionType   string
	CompanyCIK    string
	CompanyTicker string
	CompanyName   string
	Score         float64
	Source        string // "vector" or "graph"
	Related       string // relationship description, set only for graph-sourced chunks
}

// Path records how a related company was reached during expansion.
type Path struct {
	CompanyCIK       string
	HopDistance      int
	EdgeType         model.RelationshipType
	BridgeCompanyCIK string
}

// Result is the composed answer payload (spec §4.10's answer() return
// shape).
type Result struct {
	Chunks           []Chunk
	Context          string
	Companies        []string
	RelatedCompanies []string
	Paths            []Path
}

// Retriever runs GraphRAG queries against a Neo4j store.
type Retriever struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewRetriever wraps an already-open driver (typically shared with
// pkg/graph's Store via Store.Driver()/Store.Database()).
func NewRetriever(driver neo4j.DriverWithContext, database string) *Retriever {
	return &Retriever{driver: driver, database: database}
}

func (r *Retriever) session(ctx context.Context) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: r.database})
}

// Answer runs the full five-stage retrieval pipeline for questionVec and
// composes the result context. focusTicker, when non-empty, is currently
// accepted for forward compatibility with a company-scoped search but
// does not narrow the seed stage — the graph-expansion stage already
// surfaces ticker-focused context via related-company paths.
func (r *Retriever) Answer(ctx context.Context, questionVec []float32, focusTicker string, maxChunks, maxHops int, useGraph bool) (Result, error) {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}

	seeds, err := r.seedSearch(ctx, questionVec, 2*maxChunks, DefaultMinSimilarity)
	if err != nil {
		return Result{}, fmt.Errorf("rag: seed search: %w", err)
	}

	companies := distinctCompanies(seeds)

	var paths []Path
	var enriched []Chunk
	var related []string
	if useGraph && len(companies) > 0 {
		paths, err = r.expand(ctx, companies, maxHops)
		if err != nil {
			return Result{}, fmt.Errorf("rag: graph expansion: %w", err)
		}
		related = relatedCompanyKeys(paths)

		enriched, err = r.enrich(ctx, paths, questionVec)
		if err != nil {
			return Result{}, fmt.Errorf("rag: enrichment: %w", err)
		}
	}

	merged := mergeChunks(seeds, enriched, maxChunks)
	return Result{
		Chunks:           merged,
		Context:          composeContext(merged),
		Companies:        companies,
		RelatedCompanies: related,
		Paths:            paths,
	}, nil
}

func distinctCompanies(chunks []Chunk) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range chunks {
		if c.CompanyCIK == "" || seen[c.CompanyCIK] {
			continue
		}
		seen[c.CompanyCIK] = true
		out = append(out, c.CompanyCIK)
	}
	return out
}

func relatedCompanyKeys(paths []Path) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		if seen[p.CompanyCIK] {
			continue
		}
		seen[p.CompanyCIK] = true
		out = append(out, p.CompanyCIK)
	}
	return out
}

// mergeChunks deduplicates seeds+enriched by chunk_id (seeds win ties),
// sorts by score descending, and cuts to maxChunks (spec §4.10 step 4).
func mergeChunks(seeds, enriched []Chunk, maxChunks int) []Chunk {
	byID := make(map[string]Chunk, len(seeds)+len(enriched))
	order := make([]string, 0, len(seeds)+len(enriched))
	for _, c := range seeds {
		if _, ok := byID[c.ChunkID]; !ok {
			order = append(order, c.ChunkID)
		}
		byID[c.ChunkID] = c
	}
	for _, c := range enriched {
		if existing, ok := byID[c.ChunkID]; ok {
			if existing.Score >= c.Score {
				continue
			}
		} else {
			order = append(order, c.ChunkID)
		}
		byID[c.ChunkID] = c
	}

	out := make([]Chunk, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxChunks {
		out = out[:maxChunks]
	}
	return out
}

// composeContext renders the retained chunks in the
// "[{company} – {section_type} – Chunk {index} – Source: {vector|graph}{; Related: ...}]"
// format from spec §4.10 step 5.
func composeContext(chunks []Chunk) string {
	var out string
	for i, c := range chunks {
		if i > 0 {
			out += "\n\n"
		}
		company := c.CompanyName
		if company == "" {
			company = c.CompanyTicker
		}
		if company == "" {
			company = c.CompanyCIK
		}
		header := fmt.Sprintf("[%s – %s – Chunk %d – Source: %s", company, c.SectionType, c.ChunkIndex, c.Source)
		if c.Related != "" {
			header += "; Related: " + c.Related
		}
		header += "]"
		out += header + "\n" + c.Text
	}
	return out
}
