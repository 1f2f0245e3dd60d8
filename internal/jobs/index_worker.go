package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/logger"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
)

const (
	// MaxRetries is the maximum number of attempts for one index job.
	MaxRetries = 3

	claimBatchSize = 10
)

// IndexJobRepository claims and updates queued index jobs.
type IndexJobRepository interface {
	ClaimPending(ctx context.Context, limit int) ([]*domain.IndexJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.IndexJobStatus, errMsg string) error
	IncrementRetries(ctx context.Context, id string) error
}

// Indexer segments and indexes one candidate.
type Indexer interface {
	IndexCandidate(ctx context.Context, candidateID string) error
	MarkFailed(ctx context.Context, candidateID string) error
}

// IndexWorker drains the index job queue.
type IndexWorker struct {
	repo    IndexJobRepository
	indexer Indexer
	logger  *zap.Logger
}

func NewIndexWorker(repo IndexJobRepository, indexer Indexer, log *zap.Logger) *IndexWorker {
	return &IndexWorker{repo: repo, indexer: indexer, logger: logger.OrNop(log)}
}

// ProcessJobs implements the JobProcessor interface
func (w *IndexWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	w.logger.Debug("processing index jobs", zap.Int("count", len(jobs)))
	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			w.logger.Error("index job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	return nil
}

func (w *IndexWorker) processJob(ctx context.Context, job *domain.IndexJob) error {
	ctx, span := telemetry.StartJob(ctx, "index", telemetry.SpanAttributes{CandidateID: job.CandidateID})
	defer span.End()

	if err := w.indexer.IndexCandidate(ctx, job.CandidateID); err != nil {
		span.SetError(err)
		return w.handleJobFailure(ctx, job, err)
	}
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}
	return nil
}

// handleJobFailure requeues the job until MaxRetries, then fails it and the candidate.
func (w *IndexWorker) handleJobFailure(ctx context.Context, job *domain.IndexJob, jobErr error) error {
	log := w.logger.With(zap.String("job_id", job.ID), logger.Candidate(job.CandidateID))

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	attempt := job.Retries + 1
	if attempt >= MaxRetries {
		log.Error("index job exhausted retries", zap.Int32("attempts", attempt), zap.Error(jobErr))
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to update job status to failed: %w", err)
		}
		if err := w.indexer.MarkFailed(ctx, job.CandidateID); err != nil {
			return fmt.Errorf("failed to mark candidate failed: %w", err)
		}
		return nil
	}

	log.Warn("index job will be retried", zap.Int32("attempt", attempt), zap.Int("max", MaxRetries), zap.Error(jobErr))
	errMsg := fmt.Sprintf("retry %d: %v", attempt, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.IndexJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to reset job status to pending: %w", err)
	}
	return nil
}
