package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Spec §4.8 batching limits: up to MaxChunksPerBatch chunks and up to
// MaxTokensPerBatch tokens per embedding request, order preserved.
const (
	MaxChunksPerBatch = 30
	MaxTokensPerBatch = 250000

	// Dimension is the vector size provisioned on Chunk.embedding's graph
	// vector index (spec §4.7).
	Dimension = 1536

	defaultModel = "gemini-embedding-001"
)

func int32Ptr(i int32) *int32 { return &i }

// Provider embeds batches of text against Google's Gemini embedding
// model, ported from codenerd's GenAIEngine with the batch ceiling and
// output dimension replaced by spec §4.8's values and a token budget
// added alongside the item-count one.
type Provider struct {
	client *genai.Client
	model  string
}

// NewProvider constructs a Provider. model defaults to gemini-embedding-001
// when empty.
func NewProvider(ctx context.Context, apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding: API key is required")
	}
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("embedding: create genai client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

// Model reports the embedding model name, part of the cache validation
// triple (model, dimension, text hash).
func (p *Provider) Model() string { return p.model }

// EmbedBatch embeds texts in order, auto-splitting into sub-batches that
// respect both MaxChunksPerBatch and MaxTokensPerBatch, then concatenates
// results so the returned slice lines up index-for-index with texts.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	start := 0
	for start < len(texts) {
		end := start + 1
		tokenBudget := EstimateTokens(texts[start])
		for end < len(texts) && end-start < MaxChunksPerBatch {
			next := EstimateTokens(texts[end])
			if tokenBudget+next > MaxTokensPerBatch {
				break
			}
			tokenBudget += next
			end++
		}

		vectors, err := p.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		out = append(out, vectors...)
		start = end
	}
	return out, nil
}

func (p *Provider) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	result, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: int32Ptr(Dimension),
	})
	if err != nil {
		return nil, fmt.Errorf("genai EmbedContent: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("genai EmbedContent: expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}

	vectors := make([][]float32, len(texts))
	for i, e := range result.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}
