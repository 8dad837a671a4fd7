package embedding

import "testing"

func closeEnough(a, b float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-4
}

func TestAggregate_SingleVectorPassthrough(t *testing.T) {
	v := []float32{1, 2, 3}
	out := Aggregate([][]float32{v}, AggWeightedDecay)
	for i := range v {
		if out[i] != v[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], v[i])
		}
	}
}

func TestAggregate_WeightedDecayFavorsEarlierChunks(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}}
	out := Aggregate(vectors, AggWeightedDecay)
	if out[0] <= out[1] {
		t.Errorf("expected earlier chunk to dominate: out=%v", out)
	}
}

func TestAggregate_Uniform(t *testing.T) {
	vectors := [][]float32{{2, 4}, {4, 8}}
	out := Aggregate(vectors, AggUniform)
	if !closeEnough(out[0], 3) || !closeEnough(out[1], 6) {
		t.Errorf("Aggregate(uniform) = %v, want [3 6]", out)
	}
}

func TestAggregate_ElementwiseMax(t *testing.T) {
	vectors := [][]float32{{1, 5}, {3, 2}}
	out := Aggregate(vectors, AggElementwiseMax)
	if out[0] != 3 || out[1] != 5 {
		t.Errorf("Aggregate(max) = %v, want [3 5]", out)
	}
}

func TestAggregate_MismatchedDimensionsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched dimensions")
		}
	}()
	Aggregate([][]float32{{1, 2}, {1, 2, 3}}, AggUniform)
}
