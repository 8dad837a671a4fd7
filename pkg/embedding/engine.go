package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"edgarkg/pkg/cache"
)

// record is the cache payload stored under {entity_key}:{text_property},
// matching spec §4.8's cache contract: text, its hash, model, dimension,
// vector, and a creation timestamp.
type record struct {
	Text       string    `json:"text"`
	TextSHA256 string    `json:"text_sha256"`
	Model      string    `json:"model"`
	Dimension  int       `json:"dimension"`
	Vector     []float32 `json:"vector"`
	CreatedAt  time.Time `json:"created_at"`
}

func sha256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// cacheKey builds the {entity_key}:{text_property} composite key.
func cacheKey(entityKey, textProperty string) string {
	return entityKey + ":" + textProperty
}

// validVector reports whether v has the expected dimension and every
// component is finite (spec §4.8, §8's validation invariant).
func validVector(v []float32, expectedDim int) bool {
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

// Engine ties chunking, batched provider calls, aggregation, and cache
// validation together into the single per-entity operation the pipeline
// calls: "give this entity's text a validated, cached embedding."
// Grounded in domain_status_graph/embeddings/create.py's update loop
// (cache check -> chunk -> embed -> aggregate -> validate -> store).
type Engine struct {
	provider  *Provider
	cache     *cache.Cache
	chunkSize int
	overlap   int
	aggregate AggregationMethod
}

// NewEngine constructs an Engine. chunkSize/overlap of 0 take spec §4.8's
// defaults (7000/200 tokens); an empty aggregate takes AggWeightedDecay.
func NewEngine(provider *Provider, c *cache.Cache, chunkSize, overlap int, aggregate AggregationMethod) *Engine {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}
	if aggregate == "" {
		aggregate = AggWeightedDecay
	}
	return &Engine{provider: provider, cache: c, chunkSize: chunkSize, overlap: overlap, aggregate: aggregate}
}

// Embed returns a validated, single vector for text, keyed in the cache
// by (entityKey, textProperty). An empty text produces no chunks, issues
// no provider request, and writes no cache entry (spec §8's empty-text
// edge case).
func (e *Engine) Embed(ctx context.Context, entityKey, textProperty, text string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}

	key := cacheKey(entityKey, textProperty)
	if v, ok := e.readCache(key, text); ok {
		return v, nil
	}

	chunks := ChunkText(text, e.chunkSize, e.overlap)
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := e.provider.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}

	vec := Aggregate(vectors, e.aggregate)
	if !validVector(vec, Dimension) {
		return nil, fmt.Errorf("embedding: aggregated vector for %q failed validation (dimension=%d)", key, len(vec))
	}

	if err := e.writeCache(key, text, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Engine) readCache(key, text string) ([]float32, bool) {
	if e.cache == nil {
		return nil, false
	}
	raw, ok := e.cache.Get(cache.NSEmbeddings, key)
	if !ok {
		return nil, false
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	if rec.Model != e.provider.Model() {
		return nil, false
	}
	if rec.Dimension != Dimension {
		return nil, false
	}
	if rec.TextSHA256 != sha256Hex(text) {
		return nil, false
	}
	if !validVector(rec.Vector, Dimension) {
		return nil, false
	}
	return rec.Vector, true
}

func (e *Engine) writeCache(key, text string, vec []float32) error {
	if e.cache == nil {
		return nil
	}
	rec := record{
		Text:       text,
		TextSHA256: sha256Hex(text),
		Model:      e.provider.Model(),
		Dimension:  len(vec),
		Vector:     vec,
		CreatedAt:  time.Now().UTC(),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("embedding: marshal cache record: %w", err)
	}
	return e.cache.Set(cache.NSEmbeddings, key, raw, 0)
}
