package embedding

import "math"

// AggregationMethod selects how multiple chunk vectors collapse into one
// vector for a source text (spec §4.8).
type AggregationMethod string

const (
	// AggWeightedDecay combines vectors by weight_i ∝ exp(-0.2·i),
	// normalized so weights sum to 1 — earlier chunks (the start of a
	// business description or risk-factors section) dominate. This is
	// the default.
	AggWeightedDecay AggregationMethod = "weighted_decay"
	AggUniform       AggregationMethod = "uniform"
	AggElementwiseMax AggregationMethod = "elementwise_max"
)

const decayRate = 0.2

// Aggregate combines chunkVectors (in chunk order) into a single vector
// using method. A single-chunk input is returned unchanged. Vectors must
// share the same dimension; Aggregate panics on a dimension mismatch,
// which indicates a caller bug (mixed embedding models), not bad input.
func Aggregate(chunkVectors [][]float32, method AggregationMethod) []float32 {
	if len(chunkVectors) == 0 {
		return nil
	}
	if len(chunkVectors) == 1 {
		return append([]float32(nil), chunkVectors[0]...)
	}
	dim := len(chunkVectors[0])
	for _, v := range chunkVectors {
		if len(v) != dim {
			panic("embedding: Aggregate called with mismatched vector dimensions")
		}
	}

	switch method {
	case AggUniform:
		return uniformAverage(chunkVectors, dim)
	case AggElementwiseMax:
		return elementwiseMax(chunkVectors, dim)
	default:
		return weightedDecayAverage(chunkVectors, dim)
	}
}

func weightedDecayAverage(vectors [][]float32, dim int) []float32 {
	weights := make([]float64, len(vectors))
	var sum float64
	for i := range vectors {
		w := math.Exp(-decayRate * float64(i))
		weights[i] = w
		sum += w
	}
	for i := range weights {
		weights[i] /= sum
	}

	out := make([]float32, dim)
	for i, v := range vectors {
		w := weights[i]
		for d := 0; d < dim; d++ {
			out[d] += float32(w) * v[d]
		}
	}
	return out
}

func uniformAverage(vectors [][]float32, dim int) []float32 {
	out := make([]float32, dim)
	for _, v := range vectors {
		for d := 0; d < dim; d++ {
			out[d] += v[d]
		}
	}
	n := float32(len(vectors))
	for d := range out {
		out[d] /= n
	}
	return out
}

func elementwiseMax(vectors [][]float32, dim int) []float32 {
	out := append([]float32(nil), vectors[0]...)
	for _, v := range vectors[1:] {
		for d := 0; d < dim; d++ {
			if v[d] > out[d] {
				out[d] = v[d]
			}
		}
	}
	return out
}
