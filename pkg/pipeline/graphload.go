package pipeline

import (
	"context"
	"fmt"

	"edgarkg/pkg/graph"
	"edgarkg/pkg/model"
)

// LoadCompanies upserts companies onto :Company nodes, batched per the
// configured graph batch size (spec §4.7, default 1000).
func LoadCompanies(ctx context.Context, d *Deps, companies []model.Company) error {
	batch := make([]map[string]any, len(companies))
	for i, c := range companies {
		batch[i] = graph.CompanyProperties(c)
	}
	return d.Graph.UpsertNodes(ctx, "Company", "cik", batch, d.Tuning.Graph.BatchSize)
}

// LoadDomains upserts domains onto :Domain nodes and links each owning
// company via HAS_DOMAIN.
func LoadDomains(ctx context.Context, d *Deps, domainsByCIK map[string]model.Domain) error {
	nodes := make([]map[string]any, 0, len(domainsByCIK))
	edges := make([]graph.RelationshipRow, 0, len(domainsByCIK))
	for cik, dom := range domainsByCIK {
		nodes = append(nodes, graph.DomainProperties(dom))
		edges = append(edges, graph.RelationshipRow{FromKey: cik, ToKey: dom.FinalDomain, Properties: map[string]any{}})
	}
	if err := d.Graph.UpsertNodes(ctx, "Domain", "final_domain", nodes, d.Tuning.Graph.BatchSize); err != nil {
		return fmt.Errorf("load domains: %w", err)
	}
	return d.Graph.UpsertRelationships(ctx, model.RelHasDomain, "Company", "cik", "Domain", "final_domain", edges, d.Tuning.Graph.BatchSize)
}

// LoadDocument upserts one document's chunks, links each to its parent
// :Document node (PART_OF_DOCUMENT) and chains consecutive chunks
// (NEXT_CHUNK), matching the chunk-ordering relationship spec §4.7 names.
func LoadDocument(ctx context.Context, d *Deps, doc model.Document, chunks []model.Chunk) error {
	if err := d.Graph.UpsertNodes(ctx, "Document", "doc_id", []map[string]any{graph.DocumentProperties(doc)}, d.Tuning.Graph.BatchSize); err != nil {
		return fmt.Errorf("load document %s: %w", doc.DocID, err)
	}

	chunkRows := make([]map[string]any, len(chunks))
	partOfEdges := make([]graph.RelationshipRow, len(chunks))
	for i, c := range chunks {
		chunkRows[i] = graph.ChunkProperties(c)
		partOfEdges[i] = graph.RelationshipRow{FromKey: c.ChunkID, ToKey: doc.DocID, Properties: map[string]any{}}
	}
	if err := d.Graph.UpsertNodes(ctx, "Chunk", "chunk_id", chunkRows, d.Tuning.Graph.BatchSize); err != nil {
		return fmt.Errorf("load chunks for %s: %w", doc.DocID, err)
	}
	if err := d.Graph.UpsertRelationships(ctx, model.RelPartOfDoc, "Chunk", "chunk_id", "Document", "doc_id", partOfEdges, d.Tuning.Graph.BatchSize); err != nil {
		return fmt.Errorf("link chunks to document %s: %w", doc.DocID, err)
	}

	var nextEdges []graph.RelationshipRow
	for i := 0; i+1 < len(chunks); i++ {
		nextEdges = append(nextEdges, graph.RelationshipRow{FromKey: chunks[i].ChunkID, ToKey: chunks[i+1].ChunkID, Properties: map[string]any{}})
	}
	if len(nextEdges) == 0 {
		return nil
	}
	return d.Graph.UpsertRelationships(ctx, model.RelNextChunk, "Chunk", "chunk_id", "Chunk", "chunk_id", nextEdges, d.Tuning.Graph.BatchSize)
}

// LoadRelationships upserts the resolved supply-chain edges (spec §4.6)
// onto their respective relationship types, grouped so each UNWIND batch
// targets a single relationship type (Neo4j relationship types can't be
// parameterized within one query).
func LoadRelationships(ctx context.Context, d *Deps, edges []model.RelationshipEdge) error {
	byType := make(map[model.RelationshipType][]graph.RelationshipRow)
	for _, e := range edges {
		byType[e.Type] = append(byType[e.Type], graph.RelationshipRow{
			FromKey: e.FromCIK,
			ToKey:   e.ToCIK,
			Properties: map[string]any{
				"confidence":  e.Confidence,
				"raw_mention": e.RawMention,
			},
		})
	}
	for relType, rows := range byType {
		if err := d.Graph.UpsertRelationships(ctx, relType, "Company", "cik", "Company", "cik", rows, d.Tuning.Graph.BatchSize); err != nil {
			return fmt.Errorf("load %s relationships: %w", relType, err)
		}
	}
	return nil
}

// LoadSimilarityEdges writes a symmetric similarity edge set onto
// nodeLabel nodes, delegating to graph.Store's delete-then-bidirectional
// write (spec §4.9).
func LoadSimilarityEdges(ctx context.Context, d *Deps, relType model.RelationshipType, nodeLabel, keyProperty string, pairs []model.SimilarityEdge) error {
	return d.Graph.WriteSimilarityPairs(ctx, relType, nodeLabel, keyProperty, pairs, d.Tuning.Similarity.BatchSize)
}
