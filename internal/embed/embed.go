// Package embed turns project descriptions into vectors through an OpenAI-compatible API.
package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/repodex/internal/contract"
	"github.com/huangsam/repodex/schema"
	"github.com/sashabaranov/go-openai"
)

// EnvAPIKey and EnvBaseURL name the environment variables read by the build command.
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
)

// ErrNoAPIKey is returned when embeddings are requested without a key.
var ErrNoAPIKey = errors.New(EnvAPIKey + " is not set")

// embeddingsClient is the part of the OpenAI client used here.
type embeddingsClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder embeds texts in batches, keeping input order.
type OpenAIEmbedder struct {
	client    embeddingsClient
	model     string
	batchSize int
}

var _ contract.Embedder = &OpenAIEmbedder{} // Compile-time check

// NewOpenAIEmbedder creates an embedder. An empty baseURL targets api.openai.com.
func NewOpenAIEmbedder(apiKey, model, baseURL string, batchSize int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return newEmbedder(openai.NewClientWithConfig(config), model, batchSize), nil
}

func newEmbedder(client embeddingsClient, model string, batchSize int) *OpenAIEmbedder {
	if model == "" {
		model = contract.DefaultEmbedModel
	}
	if batchSize < 1 {
		batchSize = contract.DefaultEmbedBatch
	}
	return &OpenAIEmbedder{client: client, model: model, batchSize: batchSize}
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string { return e.model }

// Embed returns one vector per text, in the order of texts. Any failed batch fails the call.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding batch %d-%d: got %d vectors", start, end, len(resp.Data))
		}
		filled := make([]bool, end-start)
		for i, d := range resp.Data {
			// The API reports each vector's position within the batch
			idx := d.Index
			if idx < 0 || idx >= end-start {
				idx = i
			}
			if filled[idx] {
				return nil, fmt.Errorf("embedding batch %d-%d: duplicate vector index %d", start, end, idx)
			}
			filled[idx] = true
			vectors[start+idx] = d.Embedding
		}
	}
	return vectors, nil
}

// TextOf is the text embedded for a project: its name, description and tags.
func TextOf(p schema.Project) string {
	name := p.FullName
	if name == "" {
		name = p.Name
	}
	parts := []string{name}
	if d := strings.TrimSpace(p.Description); d != "" {
		parts = append(parts, d)
	}
	if len(p.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(p.Tags, ", "))
	}
	return strings.Join(parts, ". ")
}
