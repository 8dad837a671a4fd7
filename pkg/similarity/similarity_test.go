package similarity

import (
	"math"
	"testing"
)

func TestValidateEmbedding(t *testing.T) {
	if !ValidateEmbedding([]float32{1, 2, 3}, 3) {
		t.Error("expected valid embedding to pass")
	}
	if ValidateEmbedding([]float32{1, 2}, 3) {
		t.Error("expected dimension mismatch to fail")
	}
	if ValidateEmbedding([]float32{1, float32(math.NaN())}, 2) {
		t.Error("expected NaN to fail")
	}
	if ValidateEmbedding(nil, 3) {
		t.Error("expected empty vector to fail")
	}
}

func TestValidateScore(t *testing.T) {
	for _, ok := range []float64{-1, 0, 0.5, 1} {
		if !ValidateScore(ok) {
			t.Errorf("ValidateScore(%v) = false, want true", ok)
		}
	}
	for _, bad := range []float64{1.1, -1.1, math.NaN(), math.Inf(1)} {
		if ValidateScore(bad) {
			t.Errorf("ValidateScore(%v) = true, want false", bad)
		}
	}
}

func TestCosineSimilarityMatrix_IdenticalVectorsScoreOne(t *testing.T) {
	embeddings := [][]float32{{1, 0, 0}, {1, 0, 0}}
	m := CosineSimilarityMatrix(embeddings)
	if math.Abs(float64(m[0][1])-1.0) > 1e-5 {
		t.Errorf("identical vectors similarity = %v, want ~1.0", m[0][1])
	}
}

func TestCosineSimilarityMatrix_OrthogonalVectorsScoreZero(t *testing.T) {
	embeddings := [][]float32{{1, 0}, {0, 1}}
	m := CosineSimilarityMatrix(embeddings)
	if math.Abs(float64(m[0][1])) > 1e-5 {
		t.Errorf("orthogonal vectors similarity = %v, want ~0", m[0][1])
	}
}

func TestCosineSimilarityMatrix_ZeroVectorNoPanic(t *testing.T) {
	embeddings := [][]float32{{0, 0}, {1, 1}}
	m := CosineSimilarityMatrix(embeddings)
	if math.IsNaN(float64(m[0][1])) {
		t.Error("zero-vector row produced NaN similarity")
	}
}

func TestFindTopKSimilarPairs_CanonicalOrderingAndDedup(t *testing.T) {
	keys := []string{"zoo", "alpha", "middle"}
	embeddings := [][]float32{
		{1, 0, 0},
		{1, 0, 0},
		{0.9, 0.1, 0},
	}
	pairs := FindTopKSimilarPairs(keys, embeddings, 0.5, 50)
	if len(pairs) == 0 {
		t.Fatal("expected at least one pair above threshold")
	}
	for _, p := range pairs {
		if p.KeyA >= p.KeyB {
			t.Errorf("pair not canonically ordered: %+v", p)
		}
	}
	seen := make(map[[2]string]bool)
	for _, p := range pairs {
		k := [2]string{p.KeyA, p.KeyB}
		if seen[k] {
			t.Errorf("duplicate pair %+v", p)
		}
		seen[k] = true
	}
}

func TestFindTopKSimilarPairs_BelowThresholdExcluded(t *testing.T) {
	keys := []string{"a", "b"}
	embeddings := [][]float32{{1, 0}, {0, 1}}
	pairs := FindTopKSimilarPairs(keys, embeddings, 0.7, 50)
	if len(pairs) != 0 {
		t.Errorf("expected no pairs above threshold for orthogonal vectors, got %v", pairs)
	}
}

func TestFindTopKSimilarPairs_FewerThanTwoKeys(t *testing.T) {
	if pairs := FindTopKSimilarPairs([]string{"a"}, [][]float32{{1}}, 0.5, 50); pairs != nil {
		t.Errorf("expected nil for single key, got %v", pairs)
	}
}
