// Package openai produces CV chunk embeddings through the OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultEmbeddingModel      = openai.SmallEmbedding3
	DefaultEmbeddingDimensions = 1536

	// maxBatchSize bounds the number of inputs sent in one request.
	maxBatchSize = 64
)

var (
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	ErrNoAPIKey        = errors.New("openai api key not set")
	ErrShortResponse   = errors.New("embedding response is missing inputs")
)

// EmbeddingAPI is the raw batch call to the provider.
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

type sdkAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func (a *sdkAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			continue
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

type Config struct {
	APIKey     string
	Model      string
	Dimensions int
}

// Embedder validates and batches embedding requests.
type Embedder struct {
	api        EmbeddingAPI
	dimensions int
}

// NewEmbedder creates an Embedder backed by the OpenAI SDK.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	model := openai.EmbeddingModel(cfg.Model)
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return newEmbedder(&sdkAdapter{client: openai.NewClient(cfg.APIKey), model: model}, cfg.Dimensions), nil
}

func newEmbedder(api EmbeddingAPI, dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Embedder{api: api, dimensions: dimensions}
}

func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// EmbedQuery embeds a single search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedTexts embeds texts in order, splitting them into provider-sized batches.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ErrEmptyText
		}
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))
		batch, err := e.api.CreateEmbeddings(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings: %w", err)
		}
		if len(batch) != end-start {
			return nil, ErrShortResponse
		}
		for _, vec := range batch {
			if len(vec) != e.dimensions {
				return nil, fmt.Errorf("%w: got %d, want %d", ErrWrongDimensions, len(vec), e.dimensions)
			}
		}
		out = append(out, batch...)
	}
	return out, nil
}
