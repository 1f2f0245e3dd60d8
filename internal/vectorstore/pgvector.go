// Package vectorstore holds the chunk index adapters used by retrieval.
package vectorstore

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

const (
	embedGroupSize  = 16
	embedConcurrent = 4
)

// Embedder turns text into vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkIndex persists embedded chunks partitioned by candidate.
type ChunkIndex interface {
	ReplaceChunks(ctx context.Context, candidateID string, chunks []domain.Chunk, embeddings [][]float32) error
	SearchChunks(ctx context.Context, candidateID string, embedding []float32, limit int) ([]domain.RetrievedChunk, error)
	DeleteChunks(ctx context.Context, candidateID string) error
}

// PGVector embeds chunks with an external model and stores them in Postgres.
type PGVector struct {
	embedder Embedder
	index    ChunkIndex
}

func NewPGVector(embedder Embedder, index ChunkIndex) *PGVector {
	return &PGVector{embedder: embedder, index: index}
}

// Upsert replaces every indexed chunk of the candidate.
func (p *PGVector) Upsert(ctx context.Context, candidateID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return p.index.DeleteChunks(ctx, candidateID)
	}

	embeddings := make([][]float32, len(chunks))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrent)

	for start := 0; start < len(chunks); start += embedGroupSize {
		end := min(start+embedGroupSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}
		g.Go(func() error {
			vecs, err := p.embedder.EmbedTexts(gCtx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			copy(embeddings[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return p.index.ReplaceChunks(ctx, candidateID, chunks, embeddings)
}

// Search ranks the candidate's chunks by cosine similarity to query.
// A candidate with no indexed rows yields domain.ErrIndexNotFound.
func (p *PGVector) Search(ctx context.Context, candidateID, query string, topK int) ([]domain.RetrievedChunk, error) {
	vec, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := p.index.SearchChunks(ctx, candidateID, vec, topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domain.ErrIndexNotFound
	}
	for i := range results {
		results[i].RelevanceScore = clampUnit(results[i].RelevanceScore)
	}
	return results, nil
}

func (p *PGVector) Delete(ctx context.Context, candidateID string) error {
	return p.index.DeleteChunks(ctx, candidateID)
}

// RelevanceFromDistance maps pgvector cosine distance in [0,2] to [0,1].
func RelevanceFromDistance(distance float64) float64 {
	return clampUnit(1 - distance/2)
}

func clampUnit(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
