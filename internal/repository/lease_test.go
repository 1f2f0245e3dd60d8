//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

func TestLeaseRepository(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewLeaseRepository(pool)

	ok, err := repo.Acquire(ctx, "cand-1", "holder-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Acquire(ctx, "cand-1", "holder-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "live lease must not be taken over")

	ok, err = repo.Acquire(ctx, "cand-2", "holder-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "leases are per candidate")

	require.NoError(t, repo.Release(ctx, "cand-1", "holder-b"))
	ok, err = repo.Acquire(ctx, "cand-1", "holder-c", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "release by a non-holder is a no-op")

	require.NoError(t, repo.Release(ctx, "cand-1", "holder-a"))
	ok, err = repo.Acquire(ctx, "cand-1", "holder-c", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLeaseRepository_ExpiredTakeover(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewLeaseRepository(pool)

	start := time.Now()
	repo.now = func() time.Time { return start }
	ok, err := repo.Acquire(ctx, "cand-1", "holder-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	repo.now = func() time.Time { return start.Add(2 * time.Minute) }
	ok, err = repo.Acquire(ctx, "cand-1", "holder-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuditRepository(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewAuditRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Record(ctx, &domain.AuditEvent{ID: "a1", OwnerID: "owner-1", CandidateID: "cand-1", Action: domain.AuditEvaluationFailed, CreatedAt: now}))
	require.NoError(t, repo.Record(ctx, &domain.AuditEvent{ID: "a2", OwnerID: "owner-1", CandidateID: "cand-1", Action: domain.AuditEvaluationCompleted, CreatedAt: now.Add(time.Second)}))

	events, err := repo.ListByCandidate(ctx, "cand-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.AuditEvaluationFailed, events[0].Action)
	assert.Equal(t, domain.AuditEvaluationCompleted, events[1].Action)
}
