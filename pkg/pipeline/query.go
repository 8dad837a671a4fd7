package pipeline

import (
	"context"
	"fmt"

	"edgarkg/pkg/embedding"
	"edgarkg/pkg/rag"
)

// Query runs the GraphRAG query stage (spec §4.10): embeds the question
// text with the same provider used for indexing, then answers it via
// pkg/rag's vector-seed + multi-hop graph expansion retrieval.
func Query(ctx context.Context, d *Deps, provider *embedding.Provider, question, focusTicker string, maxChunks, maxHops int, useGraph bool) (rag.Result, error) {
	if d.Graph == nil {
		return rag.Result{}, fmt.Errorf("query: graph store not connected, call Deps.OpenGraph first")
	}

	vectors, err := provider.EmbedBatch(ctx, []string{question})
	if err != nil || len(vectors) == 0 {
		return rag.Result{}, fmt.Errorf("embed question: %w", err)
	}

	retriever := rag.NewRetriever(d.Graph.Driver(), d.Graph.Database())
	return retriever.Answer(ctx, vectors[0], focusTicker, maxChunks, maxHops, useGraph)
}
