package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/vectorstore"
)

// CVChunkRepository is the pgvector-backed chunk index. Every query is
// partitioned by candidate.
type CVChunkRepository struct {
	pool *pgxpool.Pool
}

func NewCVChunkRepository(pool *pgxpool.Pool) *CVChunkRepository {
	return &CVChunkRepository{pool: pool}
}

// ReplaceChunks swaps the candidate's rows for the given chunks in one transaction.
func (r *CVChunkRepository) ReplaceChunks(ctx context.Context, candidateID string, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d != %d", len(chunks), len(embeddings))
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM cv_chunks WHERE candidate_id = $1`, candidateID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, c := range chunks {
			meta, err := json.Marshal(c.Metadata)
			if err != nil {
				return fmt.Errorf("encode chunk metadata: %w", err)
			}
			batch.Queue(
				`INSERT INTO cv_chunks
					(candidate_id, chunk_index, section_type, start_char, end_char, content, metadata, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				candidateID, c.Index, c.SectionType, c.StartChar, c.EndChar, c.Text, meta, pgvector.NewVector(embeddings[i]),
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// SearchChunks ranks the candidate's chunks by cosine distance to embedding.
func (r *CVChunkRepository) SearchChunks(ctx context.Context, candidateID string, embedding []float32, limit int) ([]domain.RetrievedChunk, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT chunk_index, section_type, start_char, end_char, content, metadata,
		        embedding <=> $2 AS distance
		 FROM cv_chunks
		 WHERE candidate_id = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		candidateID, pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		rc := domain.RetrievedChunk{Chunk: domain.Chunk{CandidateID: candidateID}}
		var meta []byte
		var distance float64
		if err := rows.Scan(&rc.Index, &rc.SectionType, &rc.StartChar, &rc.EndChar, &rc.Text, &meta, &distance); err != nil {
			return nil, err
		}
		rc.RelevanceScore = vectorstore.RelevanceFromDistance(distance)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rc.Metadata); err != nil {
				return nil, fmt.Errorf("decode chunk metadata: %w", err)
			}
		}
		results = append(results, rc)
	}
	return results, rows.Err()
}

func (r *CVChunkRepository) DeleteChunks(ctx context.Context, candidateID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cv_chunks WHERE candidate_id = $1`, candidateID)
	return err
}
