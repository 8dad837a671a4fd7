package embedding

import (
	"strings"
	"testing"
)

func TestChunkText_EmptyInput(t *testing.T) {
	if chunks := ChunkText("", 100, 20); chunks != nil {
		t.Errorf("ChunkText(\"\") = %v, want nil", chunks)
	}
}

func TestChunkText_ShortTextIsSingleChunk(t *testing.T) {
	text := "a short sentence"
	chunks := ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("ChunkText(short) = %v, want [%q]", chunks, text)
	}
}

func TestChunkText_Deterministic(t *testing.T) {
	text := strings.Repeat("word ", 5000)
	a := ChunkText(text, 50, 10)
	b := ChunkText(text, 50, 10)
	if len(a) != len(b) {
		t.Fatalf("chunk count differs across runs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs across runs", i)
		}
	}
	if len(a) < 2 {
		t.Fatalf("expected multiple chunks for a long text, got %d", len(a))
	}
}

func TestChunkText_NoBlankChunks(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 2000)
	chunks := ChunkText(text, 50, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if n := EstimateTokens(""); n != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", n)
	}
	if n := EstimateTokens("abcd"); n != 1 {
		t.Errorf("EstimateTokens(4 chars) = %d, want 1", n)
	}
	if n := EstimateTokens(strings.Repeat("a", 4000)); n != 1000 {
		t.Errorf("EstimateTokens(4000 chars) = %d, want 1000", n)
	}
}
