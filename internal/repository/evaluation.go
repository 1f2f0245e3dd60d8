package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

// EvaluationRepository keeps one evaluation per candidate. Upsert supersedes
// the previous row in a single statement.
type EvaluationRepository struct {
	db dbtx
}

func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{db: pool}
}

func NewEvaluationRepositoryWithTx(tx pgx.Tx) *EvaluationRepository {
	return &EvaluationRepository{db: tx}
}

func (r *EvaluationRepository) GetByCandidate(ctx context.Context, candidateID string) (*domain.EvaluationRecord, error) {
	var rec domain.EvaluationRecord
	var payload []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, candidate_id, owner_id, payload, model, created_at
		 FROM evaluations WHERE candidate_id = $1`,
		candidateID,
	).Scan(&rec.ID, &rec.CandidateID, &rec.OwnerID, &payload, &rec.Model, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEvaluationNotFound
		}
		return nil, err
	}

	var eval domain.Evaluation
	if err := json.Unmarshal(payload, &eval); err != nil {
		return nil, fmt.Errorf("decode evaluation payload: %w", err)
	}
	rec.Result = &eval
	return &rec, nil
}

func (r *EvaluationRepository) Upsert(ctx context.Context, rec *domain.EvaluationRecord) error {
	if rec.Result == nil {
		return domain.NewDomainError(domain.ErrCodeValidation, "evaluation result is required")
	}
	payload, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode evaluation payload: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO evaluations (candidate_id, id, owner_id, payload, decision, overall_match_score, model, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (candidate_id) DO UPDATE SET
		     id = EXCLUDED.id,
		     owner_id = EXCLUDED.owner_id,
		     payload = EXCLUDED.payload,
		     decision = EXCLUDED.decision,
		     overall_match_score = EXCLUDED.overall_match_score,
		     model = EXCLUDED.model,
		     created_at = EXCLUDED.created_at`,
		rec.CandidateID, rec.ID, rec.OwnerID, payload, rec.Result.Decision, rec.Result.OverallMatchScore, rec.Model, rec.CreatedAt,
	)
	return err
}
