package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

type JobPostingRepository struct {
	pool *pgxpool.Pool
}

func NewJobPostingRepository(pool *pgxpool.Pool) *JobPostingRepository {
	return &JobPostingRepository{pool: pool}
}

func (r *JobPostingRepository) Create(ctx context.Context, j *domain.JobPosting) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO job_postings (id, owner_id, title, description, blueprint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		j.ID, j.OwnerID, j.Title, j.Description, nullableJSON(j.Blueprint), j.CreatedAt,
	)
	return err
}

func (r *JobPostingRepository) GetForOwner(ctx context.Context, ownerID, id string) (*domain.JobPosting, error) {
	var j domain.JobPosting
	var blueprint []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, description, blueprint, created_at
		 FROM job_postings WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&j.ID, &j.OwnerID, &j.Title, &j.Description, &blueprint, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobPostingNotFound
		}
		return nil, err
	}
	if len(blueprint) > 0 {
		j.Blueprint = blueprint
	}
	return &j, nil
}
