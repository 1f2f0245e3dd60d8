package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/pagination"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
)

// CandidateRepository persists candidates. GetForOwner returns
// domain.ErrCandidateNotFound for candidates of other owners.
type CandidateRepository interface {
	Create(ctx context.Context, c *domain.Candidate) error
	GetByID(ctx context.Context, id string) (*domain.Candidate, error)
	GetForOwner(ctx context.Context, ownerID, id string) (*domain.Candidate, error)
	UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error
	UpdateProfile(ctx context.Context, id string, profile json.RawMessage) error
	ListByJob(ctx context.Context, ownerID, jobID string, cursor *pagination.Cursor, limit int) (*CandidatePage, error)
}

// CandidatePage is one page of candidates, newest first.
type CandidatePage struct {
	Items      []*domain.Candidate
	NextCursor string
	HasMore    bool
}

type IndexJobRepository interface {
	Create(ctx context.Context, job *domain.IndexJob) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// CandidateService handles candidate intake and lookups.
type CandidateService struct {
	candidates CandidateRepository
	jobs       JobPostingRepository
	snapshots  ChunkSnapshotRepository
	tx         TxRunner
	uuidGen    UUIDGenerator
}

func NewCandidateService(
	candidates CandidateRepository,
	jobs JobPostingRepository,
	snapshots ChunkSnapshotRepository,
	tx TxRunner,
) *CandidateService {
	return NewCandidateServiceWithUUIDGen(candidates, jobs, snapshots, tx, &DefaultUUIDGenerator{})
}

// NewCandidateServiceWithUUIDGen creates a CandidateService with a custom UUID generator (for testing)
func NewCandidateServiceWithUUIDGen(
	candidates CandidateRepository,
	jobs JobPostingRepository,
	snapshots ChunkSnapshotRepository,
	tx TxRunner,
	uuidGen UUIDGenerator,
) *CandidateService {
	return &CandidateService{
		candidates: candidates,
		jobs:       jobs,
		snapshots:  snapshots,
		tx:         tx,
		uuidGen:    uuidGen,
	}
}

type CreateCandidateInput struct {
	OwnerID string
	JobID   string
	Name    string
	Email   string
	CVText  string
}

// Create stores a candidate and queues its CV for indexing in one transaction.
func (s *CandidateService) Create(ctx context.Context, input CreateCandidateInput) (*domain.Candidate, error) {
	ctx, span := telemetry.StartSpan(ctx, "CandidateService.Create", telemetry.SpanAttributes{
		OwnerID:   input.OwnerID,
		JobID:     input.JobID,
		Operation: "create",
	})
	defer span.End()

	if strings.TrimSpace(input.CVText) == "" {
		return nil, domain.ErrEmptyCV
	}
	if _, err := s.jobs.GetForOwner(ctx, input.OwnerID, input.JobID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	candidate := &domain.Candidate{
		ID:        s.uuidGen.NewString(),
		OwnerID:   input.OwnerID,
		JobID:     input.JobID,
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		CVText:    input.CVText,
		Status:    domain.CandidateStatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domain.ValidateCandidate(candidate); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid candidate", err)
	}

	job := s.newIndexJob(candidate.ID, now)

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Candidates().Create(ctx, candidate); err != nil {
			return err
		}
		return repos.IndexJobs().Create(ctx, job)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return candidate, nil
}

func (s *CandidateService) Get(ctx context.Context, ownerID, id string) (*domain.Candidate, error) {
	return s.candidates.GetForOwner(ctx, ownerID, id)
}

// List pages through the candidates of one job posting.
func (s *CandidateService) List(ctx context.Context, ownerID, jobID, cursor string, limit int) (*CandidatePage, error) {
	if _, err := s.jobs.GetForOwner(ctx, ownerID, jobID); err != nil {
		return nil, err
	}
	c, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	return s.candidates.ListByJob(ctx, ownerID, jobID, c, limit)
}

// RequestIndex queues another indexing pass for the candidate.
func (s *CandidateService) RequestIndex(ctx context.Context, ownerID, id string) (*domain.IndexJob, error) {
	if _, err := s.candidates.GetForOwner(ctx, ownerID, id); err != nil {
		return nil, err
	}
	job := s.newIndexJob(id, time.Now().UTC())
	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		return repos.IndexJobs().Create(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Chunks returns the stored chunk set of the candidate.
func (s *CandidateService) Chunks(ctx context.Context, ownerID, id string) ([]domain.Chunk, error) {
	if _, err := s.candidates.GetForOwner(ctx, ownerID, id); err != nil {
		return nil, err
	}
	return s.snapshots.Get(ctx, id)
}

func (s *CandidateService) newIndexJob(candidateID string, now time.Time) *domain.IndexJob {
	return domain.NewIndexJob(s.uuidGen.NewString(), candidateID, domain.IndexJobStatusPending, 0, "", now, nil)
}
