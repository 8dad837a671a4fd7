// Package similarity computes pairwise cosine similarity over node
// embeddings and prunes the result to a top-K, above-threshold pair set
// ready for pkg/graph.WriteSimilarityPairs.
//
// Grounded in original_source/public_company_graph/similarity/cosine.py:
// validate_embedding, compute_cosine_similarity_matrix (L2-row-normalize
// then N·Nᵀ), and find_top_k_similar_pairs (per-row top-K above
// threshold, canonical (key1 < key2) pair ordering, keep-highest-score
// dedup). No third-party linear-algebra package appears anywhere in the
// example pack, so this stays on the standard library — see DESIGN.md.
package similarity

import (
	"math"
	"sort"
)

// ValidateEmbedding reports whether v is non-empty, has exactly
// expectedDim components, and every component is finite.
func ValidateEmbedding(v []float32, expectedDim int) bool {
	if len(v) != expectedDim {
		return false
	}
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}

// ValidateScore reports whether score is a finite value in [-1, 1], the
// full range a raw (non-normalized) cosine similarity can take.
func ValidateScore(score float64) bool {
	return !math.IsNaN(score) && !math.IsInf(score, 0) && score >= -1.0 && score <= 1.0
}

// normalizeRows L2-normalizes each row of matrix in place, leaving
// all-zero rows untouched (division by zero avoided, matching cosine.py
// setting norms[norms==0] = 1).
func normalizeRows(matrix [][]float32) {
	for i, row := range matrix {
		var sumSq float64
		for _, v := range row {
			sumSq += float64(v) * float64(v)
		}
		norm := math.Sqrt(sumSq)
		if norm == 0 {
			continue
		}
		for j, v := range row {
			matrix[i][j] = float32(float64(v) / norm)
		}
	}
}

// CosineSimilarityMatrix computes the full NxN pairwise cosine similarity
// matrix for embeddings via L2-row-normalization followed by N·Nᵀ.
func CosineSimilarityMatrix(embeddings [][]float32) [][]float32 {
	n := len(embeddings)
	if n == 0 {
		return nil
	}

	normalized := make([][]float32, n)
	for i, row := range embeddings {
		normalized[i] = append([]float32(nil), row...)
	}
	normalizeRows(normalized)

	matrix := make([][]float32, n)
	for i := range matrix {
		matrix[i] = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var dot float64
			for d := range normalized[i] {
				dot += float64(normalized[i][d]) * float64(normalized[j][d])
			}
			matrix[i][j] = float32(dot)
			matrix[j][i] = float32(dot)
		}
	}
	return matrix
}

// Pair is a canonical (KeyA < KeyB) similar pair with its score.
type Pair struct {
	KeyA  string
	KeyB  string
	Score float64
}

// FindTopKSimilarPairs computes the cosine similarity matrix for
// (keys, embeddings) and returns, per key, up to topK neighbors scoring
// at or above threshold, canonicalized and deduplicated (ties keep the
// highest score), matching find_top_k_similar_pairs.
func FindTopKSimilarPairs(keys []string, embeddings [][]float32, threshold float64, topK int) []Pair {
	if len(keys) != len(embeddings) {
		panic("similarity: keys and embeddings length mismatch")
	}
	if len(keys) < 2 {
		return nil
	}

	matrix := CosineSimilarityMatrix(embeddings)
	pairs := make(map[[2]string]float64)

	for i, keyI := range keys {
		type scored struct {
			j     int
			score float32
		}
		neighbors := make([]scored, 0, len(keys)-1)
		for j := range keys {
			if j == i {
				continue
			}
			neighbors = append(neighbors, scored{j, matrix[i][j]})
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].score > neighbors[b].score })
		if topK > 0 && len(neighbors) > topK {
			neighbors = neighbors[:topK]
		}

		for _, nb := range neighbors {
			score := float64(nb.score)
			if score < threshold {
				continue
			}
			keyJ := keys[nb.j]
			var pk [2]string
			if keyI < keyJ {
				pk = [2]string{keyI, keyJ}
			} else {
				pk = [2]string{keyJ, keyI}
			}
			if existing, ok := pairs[pk]; !ok || score > existing {
				pairs[pk] = score
			}
		}
	}

	out := make([]Pair, 0, len(pairs))
	for pk, score := range pairs {
		out = append(out, Pair{KeyA: pk[0], KeyB: pk[1], Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].KeyA != out[j].KeyA {
			return out[i].KeyA < out[j].KeyA
		}
		return out[i].KeyB < out[j].KeyB
	})
	return out
}

// Default thresholds/top-K from spec §4.9: 0.7 for most similarity
// types, relaxed to 0.6 for description similarity (business-description
// prose is lexically noisier than a structured keyword/technology set).
const (
	DefaultThreshold            = 0.7
	DefaultDescriptionThreshold = 0.6
	DefaultTopK                 = 50
)
