package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeaseRepository hands out short-lived, per-candidate evaluation leases so
// that only one process evaluates a candidate at a time.
type LeaseRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewLeaseRepository(pool *pgxpool.Pool) *LeaseRepository {
	return &LeaseRepository{pool: pool, now: time.Now}
}

// Acquire takes the lease when it is free or expired. It reports false while
// another holder's lease is live.
func (r *LeaseRepository) Acquire(ctx context.Context, candidateID, holder string, ttl time.Duration) (bool, error) {
	now := r.now().UTC()
	var got string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO evaluation_leases (candidate_id, holder, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (candidate_id) DO UPDATE
		     SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
		     WHERE evaluation_leases.expires_at <= $4
		 RETURNING holder`,
		candidateID, holder, now.Add(ttl), now,
	).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got == holder, nil
}

// Release drops the lease if holder still owns it.
func (r *LeaseRepository) Release(ctx context.Context, candidateID, holder string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM evaluation_leases WHERE candidate_id = $1 AND holder = $2`,
		candidateID, holder,
	)
	return err
}
