package pipeline

import (
	"context"
	"fmt"
	"time"

	"edgarkg/pkg/embedding"
	"edgarkg/pkg/model"
)

// EmbedSection runs the embed stage (spec §4.8) for one company section
// (business description or risk factors): chunks the text, embeds every
// chunk individually (so each model.Chunk gets its own vector for
// GraphRAG's chunk-level vector search), and separately computes the
// engine's cache-validated aggregate vector for the parent Company node.
//
// Returns the Document/Chunk rows ready for LoadDocument, plus the
// aggregated vector (nil if text is empty).
func EmbedSection(ctx context.Context, provider *embedding.Provider, engine *embedding.Engine, cik, sectionType string, year int, text string, chunkSize, overlap int) (model.Document, []model.Chunk, []float32, error) {
	if text == "" {
		return model.Document{}, nil, nil, nil
	}

	docID := model.DocIDFor(cik, sectionType, year)
	rawChunks := embedding.ChunkText(text, chunkSize, overlap)

	vectors, err := provider.EmbedBatch(ctx, rawChunks)
	if err != nil {
		return model.Document{}, nil, nil, fmt.Errorf("embed chunks for %s: %w", docID, err)
	}

	chunks := make([]model.Chunk, len(rawChunks))
	for i, chunkText := range rawChunks {
		chunkID := model.ChunkIDFor(docID, i)
		var vec []float32
		if i < len(vectors) {
			vec = vectors[i]
		}
		chunks[i] = model.Chunk{
			ChunkID:    chunkID,
			DocID:      docID,
			Text:       chunkText,
			ChunkIndex: i,
			Metadata: map[string]any{
				"company_cik":  cik,
				"section_type": sectionType,
			},
			Embedding: vec,
		}
	}

	doc := model.Document{
		DocID:       docID,
		CIK:         cik,
		SectionType: sectionType,
		Year:        year,
		ChunkCount:  len(chunks),
		Provenance:  fmt.Sprintf("embedded_at=%s", time.Now().UTC().Format(time.RFC3339)),
	}

	aggregate, err := engine.Embed(ctx, cik, sectionType, text)
	if err != nil {
		return doc, chunks, nil, fmt.Errorf("aggregate embedding for %s: %w", docID, err)
	}
	return doc, chunks, aggregate, nil
}
