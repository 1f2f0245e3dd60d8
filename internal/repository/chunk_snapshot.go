package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

// ChunkSnapshotRepository stores the last chunk set produced for a candidate.
type ChunkSnapshotRepository struct {
	pool *pgxpool.Pool
}

func NewChunkSnapshotRepository(pool *pgxpool.Pool) *ChunkSnapshotRepository {
	return &ChunkSnapshotRepository{pool: pool}
}

func (r *ChunkSnapshotRepository) Save(ctx context.Context, candidateID string, chunks []domain.Chunk) error {
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	payload, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO cv_chunk_snapshots (candidate_id, chunks, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (candidate_id) DO UPDATE SET chunks = EXCLUDED.chunks, created_at = EXCLUDED.created_at`,
		candidateID, payload, time.Now().UTC(),
	)
	return err
}

func (r *ChunkSnapshotRepository) Get(ctx context.Context, candidateID string) ([]domain.Chunk, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT chunks FROM cv_chunk_snapshots WHERE candidate_id = $1`,
		candidateID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChunksNotFound
		}
		return nil, err
	}

	var chunks []domain.Chunk
	if err := json.Unmarshal(payload, &chunks); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	return chunks, nil
}
