package rag

import (
	"strings"
	"testing"

	"edgarkg/pkg/model"
)

func TestMergeChunks_DedupKeepsHigherScore(t *testing.T) {
	seeds := []Chunk{{ChunkID: "a", Score: 0.6, Source: "vector"}}
	enriched := []Chunk{{ChunkID: "a", Score: 0.9, Source: "graph"}, {ChunkID: "b", Score: 0.4, Source: "graph"}}

	merged := mergeChunks(seeds, enriched, 10)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged chunks, got %d", len(merged))
	}
	if merged[0].ChunkID != "a" || merged[0].Score != 0.9 {
		t.Errorf("expected chunk a to win with the higher score, got %+v", merged[0])
	}
}

func TestMergeChunks_CutToMaxChunks(t *testing.T) {
	var seeds []Chunk
	for i := 0; i < 20; i++ {
		seeds = append(seeds, Chunk{ChunkID: string(rune('a' + i)), Score: float64(i)})
	}
	merged := mergeChunks(seeds, nil, 5)
	if len(merged) != 5 {
		t.Fatalf("expected 5 chunks, got %d", len(merged))
	}
	if merged[0].Score != 19 {
		t.Errorf("expected highest-scored chunk first, got score %v", merged[0].Score)
	}
}

func TestComposeContext_Format(t *testing.T) {
	chunks := []Chunk{
		{CompanyName: "Acme Corp", SectionType: "business_description", ChunkIndex: 2, Source: "vector", Text: "hello"},
		{CompanyTicker: "XYZ", SectionType: "risk_factors", ChunkIndex: 0, Source: "graph", Related: "competitor", Text: "world"},
	}
	ctx := composeContext(chunks)
	if !strings.Contains(ctx, "[Acme Corp – business_description – Chunk 2 – Source: vector]") {
		t.Errorf("missing expected header for first chunk: %s", ctx)
	}
	if !strings.Contains(ctx, "[XYZ – risk_factors – Chunk 0 – Source: graph; Related: competitor]") {
		t.Errorf("missing expected header with Related suffix: %s", ctx)
	}
}

func TestDistinctCompanies_PreservesOrderDedups(t *testing.T) {
	chunks := []Chunk{{CompanyCIK: "1"}, {CompanyCIK: "2"}, {CompanyCIK: "1"}, {CompanyCIK: ""}}
	got := distinctCompanies(chunks)
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("distinctCompanies = %v, want [1 2]", got)
	}
}

func TestSortPaths_HopDistanceThenEdgePriority(t *testing.T) {
	paths := []Path{
		{CompanyCIK: "c", HopDistance: 1, EdgeType: model.RelCompetitor},
		{CompanyCIK: "s", HopDistance: 1, EdgeType: model.RelSupplier},
		{CompanyCIK: "far", HopDistance: 2, EdgeType: model.RelSupplier},
	}
	sortPaths(paths)
	if paths[0].CompanyCIK != "s" || paths[1].CompanyCIK != "c" || paths[2].CompanyCIK != "far" {
		t.Errorf("sortPaths order = %v", paths)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors similarity = %v, want ~1", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got > 1e-9 || got < -1e-9 {
		t.Errorf("orthogonal vectors similarity = %v, want ~0", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Errorf("empty vectors similarity = %v, want 0", got)
	}
}

func TestRelationshipDescription(t *testing.T) {
	if got := relationshipDescription(Path{EdgeType: model.RelSupplier}); got != "supplier" {
		t.Errorf("relationshipDescription(supplier) = %q", got)
	}
	if got := relationshipDescription(Path{EdgeType: "UNKNOWN_TYPE"}); got != "UNKNOWN_TYPE" {
		t.Errorf("relationshipDescription(unknown) = %q, want passthrough", got)
	}
}
