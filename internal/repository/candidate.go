package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/pagination"
	"github.com/cloo-solutions/hirelens/internal/service"
)

const candidateColumns = `id, owner_id, job_id, name, email, cv_text, profile, status, created_at, updated_at`

type CandidateRepository struct {
	db dbtx
}

func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{db: pool}
}

func NewCandidateRepositoryWithTx(tx pgx.Tx) *CandidateRepository {
	return &CandidateRepository{db: tx}
}

func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.OwnerID, c.JobID, c.Name, c.Email, c.CVText, nullableJSON(c.Profile), c.Status, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return scanCandidate(row)
}

// GetForOwner hides candidates of other owners behind ErrCandidateNotFound.
func (r *CandidateRepository) GetForOwner(ctx context.Context, ownerID, id string) (*domain.Candidate, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	return scanCandidate(row)
}

func (r *CandidateRepository) UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error {
	if !domain.IsValidCandidateStatus(status) {
		return domain.ErrInvalidCandidateStatus
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE candidates SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) UpdateProfile(ctx context.Context, id string, profile json.RawMessage) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE candidates SET profile = $1, updated_at = $2 WHERE id = $3`,
		nullableJSON(profile), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) ListByJob(ctx context.Context, ownerID, jobID string, cursor *pagination.Cursor, limit int) (*service.CandidatePage, error) {
	limit = pagination.ClampLimit(limit)

	var rows pgx.Rows
	var err error
	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+candidateColumns+`
			 FROM candidates
			 WHERE owner_id = $1 AND job_id = $2 AND (created_at, id) < ($3, $4)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $5`,
			ownerID, jobID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+candidateColumns+`
			 FROM candidates
			 WHERE owner_id = $1 AND job_id = $2
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			ownerID, jobID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &service.CandidatePage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}
	return page, nil
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	var profile []byte
	err := row.Scan(&c.ID, &c.OwnerID, &c.JobID, &c.Name, &c.Email, &c.CVText, &profile, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, err
	}
	if len(profile) > 0 {
		c.Profile = json.RawMessage(profile)
	}
	return &c, nil
}

// nullableJSON stores empty documents as SQL NULL.
func nullableJSON(v json.RawMessage) []byte {
	if len(v) == 0 || string(v) == "null" {
		return nil
	}
	return v
}
