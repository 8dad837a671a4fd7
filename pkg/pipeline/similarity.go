package pipeline

import (
	"time"

	"edgarkg/pkg/model"
	"edgarkg/pkg/similarity"
)

// ComputeSimilarity runs the similarity stage (spec §4.9) over a set of
// entity embeddings, returning the top-K, above-threshold, canonically
// ordered, deduplicated pairs as SimilarityEdges of relType. threshold
// <= 0 takes similarity.DefaultThreshold; topK <= 0 takes
// similarity.DefaultTopK.
func ComputeSimilarity(relType model.RelationshipType, keys []string, embeddings [][]float32, threshold float64, topK int) []model.SimilarityEdge {
	if threshold <= 0 {
		threshold = similarity.DefaultThreshold
	}
	if topK <= 0 {
		topK = similarity.DefaultTopK
	}

	pairs := similarity.FindTopKSimilarPairs(keys, embeddings, threshold, topK)
	now := time.Now().UTC()

	edges := make([]model.SimilarityEdge, len(pairs))
	for i, p := range pairs {
		edges[i] = model.SimilarityEdge{
			Type:       relType,
			KeyA:       p.KeyA,
			KeyB:       p.KeyB,
			Score:      p.Score,
			Metric:     "cosine",
			ComputedAt: now,
		}
	}
	return edges
}
