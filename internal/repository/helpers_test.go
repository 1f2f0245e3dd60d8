//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/testutil"
)

func setupPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pc.Terminate(context.Background()) })

	return testutil.NewTestPool(ctx, t, pc, "../../migrations")
}

func seedJob(ctx context.Context, t *testing.T, pool *pgxpool.Pool, ownerID string) *domain.JobPosting {
	t.Helper()
	job := &domain.JobPosting{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       "Backend Engineer",
		Description: "Go, Postgres",
		Blueprint:   []byte(`{"must_have":["go"]}`),
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewJobPostingRepository(pool).Create(ctx, job))
	return job
}

func seedCandidate(ctx context.Context, t *testing.T, pool *pgxpool.Pool, job *domain.JobPosting, createdAt time.Time) *domain.Candidate {
	t.Helper()
	c := &domain.Candidate{
		ID:        uuid.NewString(),
		OwnerID:   job.OwnerID,
		JobID:     job.ID,
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		CVText:    "Experience\nAnalytical Engine, 1843",
		Status:    domain.CandidateStatusUploaded,
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
		UpdatedAt: createdAt.UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewCandidateRepository(pool).Create(ctx, c))
	return c
}
