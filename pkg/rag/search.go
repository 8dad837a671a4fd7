package rag

import (
	"context"
	"fmt"
	"math"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"edgarkg/pkg/model"
)

// seedSearch runs the vector-index fast path; on any failure (index
// missing, not yet online, or a driver error) it falls back to brute-
// force cosine over a capped chunk population, matching
// search_documents' try/except fallback in queries.py.
func (r *Retriever) seedSearch(ctx context.Context, queryVec []float32, limit int, minSimilarity float64) ([]Chunk, error) {
	if chunks, err := r.vectorIndexSearch(ctx, queryVec, limit, minSimilarity); err == nil {
		return chunks, nil
	}
	return r.bruteForceSearch(ctx, queryVec, limit, minSimilarity)
}

func toFloat64Slice(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func (r *Retriever) vectorIndexSearch(ctx context.Context, queryVec []float32, limit int, minSimilarity float64) ([]Chunk, error) {
	session := r.session(ctx)
	defer session.Close(ctx)

	query := `
		CALL db.index.vector.queryNodes($index_name, $k, $query_vector)
		YIELD node AS chunk, score
		WHERE score >= $min_similarity
		OPTIONAL MATCH (chunk)-[:PART_OF_DOCUMENT]->(doc:Document)
		OPTIONAL MATCH (doc)<-[:HAS]-(company:Company)
		RETURN chunk.chunk_id AS chunk_id, chunk.text AS text, chunk.chunk_index AS chunk_index,
		       doc.doc_id AS doc_id, doc.section_type AS section_type,
		       company.cik AS cik, company.ticker AS ticker, company.legal_name AS name,
		       score AS score
		ORDER BY score DESC
		LIMIT $final_limit`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"index_name":     vectorIndexName,
			"k":              limit * 3,
			"query_vector":   toFloat64Slice(queryVec),
			"min_similarity": minSimilarity,
			"final_limit":    limit,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("vector index search: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	chunks := make([]Chunk, 0, len(records))
	for _, rec := range records {
		chunks = append(chunks, chunkFromRecord(rec, "vector"))
	}
	return chunks, nil
}

// bruteForceSearch scans up to BruteForceCap chunks carrying an embedding
// and scores each against queryVec in process, matching search_documents'
// Python fallback path.
func (r *Retriever) bruteForceSearch(ctx context.Context, queryVec []float32, limit int, minSimilarity float64) ([]Chunk, error) {
	session := r.session(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (chunk:Chunk)
		WHERE chunk.embedding IS NOT NULL
		OPTIONAL MATCH (chunk)-[:PART_OF_DOCUMENT]->(doc:Document)
		OPTIONAL MATCH (doc)<-[:HAS]-(company:Company)
		RETURN chunk.chunk_id AS chunk_id, chunk.text AS text, chunk.chunk_index AS chunk_index,
		       chunk.embedding AS embedding,
		       doc.doc_id AS doc_id, doc.section_type AS section_type,
		       company.cik AS cik, company.ticker AS ticker, company.legal_name AS name
		LIMIT $cap`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"cap": BruteForceCap})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("brute-force chunk scan: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	var scored []Chunk
	for _, rec := range records {
		embedding, _ := rec.Get("embedding")
		vec, ok := toFloat32Slice(embedding)
		if !ok {
			continue
		}
		score := cosineSimilarity(queryVec, vec)
		if score < minSimilarity {
			continue
		}
		c := chunkFromRecord(rec, "vector")
		c.Score = score
		scored = append(scored, c)
	}

	sortByScoreDesc(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func toFloat32Slice(v any) ([]float32, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(list))
	for i, item := range list {
		switch n := item.(type) {
		case float64:
			out[i] = float32(n)
		case float32:
			out[i] = n
		default:
			return nil, false
		}
	}
	return out, true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sortByScoreDesc(chunks []Chunk) {
	for i := 1; i < len(chunks); i++ {
		for j := i; j > 0 && chunks[j].Score > chunks[j-1].Score; j-- {
			chunks[j], chunks[j-1] = chunks[j-1], chunks[j]
		}
	}
}

func chunkFromRecord(rec *neo4j.Record, source string) Chunk {
	var c Chunk
	c.Source = source
	if v, ok := rec.Get("chunk_id"); ok {
		c.ChunkID, _ = v.(string)
	}
	if v, ok := rec.Get("text"); ok {
		c.Text, _ = v.(string)
	}
	if v, ok := rec.Get("chunk_index"); ok {
		c.ChunkIndex = toInt(v)
	}
	if v, ok := rec.Get("doc_id"); ok {
		c.DocID, _ = v.(string)
	}
	if v, ok := rec.Get("section_type"); ok {
		c.SectionType, _ = v.(string)
	}
	if v, ok := rec.Get("cik"); ok {
		c.CompanyCIK, _ = v.(string)
	}
	if v, ok := rec.Get("ticker"); ok {
		c.CompanyTicker, _ = v.(string)
	}
	if v, ok := rec.Get("name"); ok {
		c.CompanyName, _ = v.(string)
	}
	if v, ok := rec.Get("score"); ok {
		switch n := v.(type) {
		case float64:
			c.Score = n
		case int64:
			c.Score = float64(n)
		}
	}
	return c
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// expand traverses up to maxHops from seedCompanies over
// expansionEdgeTypes, recording for each reached company its shortest-
// path edge type and bridging company, matching spec §4.10 step 2.
func (r *Retriever) expand(ctx context.Context, seedCompanies []string, maxHops int) ([]Path, error) {
	relTypeList := ""
	for i, t := range expansionEdgeTypes {
		if i > 0 {
			relTypeList += "|"
		}
		relTypeList += string(t)
	}

	query := fmt.Sprintf(`
		MATCH (seed:Company)
		WHERE seed.cik IN $seeds
		MATCH path = (seed)-[:%s*1..%d]-(related:Company)
		WHERE related.cik <> seed.cik
		WITH related, seed, path, length(path) AS hops
		ORDER BY hops ASC
		WITH related, collect({seed: seed.cik, hops: hops, rel: [r IN relationships(path) | type(r)][0]})[0] AS best
		RETURN related.cik AS cik, best.hops AS hops, best.rel AS rel_type, best.seed AS bridge_cik`,
		relTypeList, maxHops)

	session := r.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"seeds": seedCompanies})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("multi-hop expansion: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	paths := make([]Path, 0, len(records))
	for _, rec := range records {
		var p Path
		if v, ok := rec.Get("cik"); ok {
			p.CompanyCIK, _ = v.(string)
		}
		if v, ok := rec.Get("hops"); ok {
			p.HopDistance = toInt(v)
		}
		if v, ok := rec.Get("rel_type"); ok {
			s, _ := v.(string)
			p.EdgeType = model.RelationshipType(s)
		}
		if v, ok := rec.Get("bridge_cik"); ok {
			p.BridgeCompanyCIK, _ = v.(string)
		}
		paths = append(paths, p)
	}

	sortPaths(paths)
	return paths, nil
}

// sortPaths orders by hop distance ascending, then the fixed edge-type
// priority (supplier > customer > partner > competitor > semantic).
func sortPaths(paths []Path) {
	for i := 1; i < len(paths); i++ {
		for j := i; j > 0 && lessPath(paths[j], paths[j-1]); j-- {
			paths[j], paths[j-1] = paths[j-1], paths[j]
		}
	}
}

func lessPath(a, b Path) bool {
	if a.HopDistance != b.HopDistance {
		return a.HopDistance < b.HopDistance
	}
	return edgeTypePriority[a.EdgeType] < edgeTypePriority[b.EdgeType]
}

// enrich pulls chunks for every related company in paths and scores them
// against queryVec, keeping those at or above EnrichMinSimilarity (spec
// §4.10 step 3).
func (r *Retriever) enrich(ctx context.Context, paths []Path, queryVec []float32) ([]Chunk, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	ciks := make([]string, 0, len(paths))
	descByCIK := make(map[string]string, len(paths))
	for _, p := range paths {
		ciks = append(ciks, p.CompanyCIK)
		descByCIK[p.CompanyCIK] = relationshipDescription(p)
	}

	query := `
		MATCH (company:Company)-[:HAS]->(doc:Document)<-[:PART_OF_DOCUMENT]-(chunk:Chunk)
		WHERE company.cik IN $ciks AND chunk.embedding IS NOT NULL
		RETURN chunk.chunk_id AS chunk_id, chunk.text AS text, chunk.chunk_index AS chunk_index,
		       chunk.embedding AS embedding,
		       doc.doc_id AS doc_id, doc.section_type AS section_type,
		       company.cik AS cik, company.ticker AS ticker, company.legal_name AS name
		LIMIT $cap`

	session := r.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"ciks": ciks, "cap": BruteForceCap})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("related-company chunk scan: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	var out []Chunk
	for _, rec := range records {
		embedding, _ := rec.Get("embedding")
		vec, ok := toFloat32Slice(embedding)
		if !ok {
			continue
		}
		score := cosineSimilarity(queryVec, vec)
		if score < EnrichMinSimilarity {
			continue
		}
		c := chunkFromRecord(rec, "graph")
		c.Score = score
		c.Related = descByCIK[c.CompanyCIK]
		out = append(out, c)
	}
	return out, nil
}

func relationshipDescription(p Path) string {
	switch p.EdgeType {
	case model.RelSupplier:
		return "supplier"
	case model.RelCustomer:
		return "customer"
	case model.RelPartner:
		return "partner"
	case model.RelCompetitor:
		return "competitor"
	case model.RelSimDesc:
		return "similar description"
	case model.RelSimRisk:
		return "similar risk profile"
	case model.RelSimIndustry:
		return "similar industry"
	default:
		return string(p.EdgeType)
	}
}
