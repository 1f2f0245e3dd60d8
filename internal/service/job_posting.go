package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
)

// JobPostingRepository persists job postings. GetForOwner returns
// domain.ErrJobPostingNotFound for postings of other owners.
type JobPostingRepository interface {
	Create(ctx context.Context, j *domain.JobPosting) error
	GetForOwner(ctx context.Context, ownerID, id string) (*domain.JobPosting, error)
}

type JobPostingService struct {
	repo    JobPostingRepository
	uuidGen UUIDGenerator
}

func NewJobPostingService(repo JobPostingRepository, uuidGen UUIDGenerator) *JobPostingService {
	if uuidGen == nil {
		uuidGen = &DefaultUUIDGenerator{}
	}
	return &JobPostingService{repo: repo, uuidGen: uuidGen}
}

type CreateJobPostingInput struct {
	OwnerID     string
	Title       string
	Description string
	Blueprint   json.RawMessage
}

func (s *JobPostingService) Create(ctx context.Context, input CreateJobPostingInput) (*domain.JobPosting, error) {
	ctx, span := telemetry.StartSpan(ctx, "JobPostingService.Create", telemetry.SpanAttributes{
		OwnerID:   input.OwnerID,
		Operation: "create",
	})
	defer span.End()

	job := &domain.JobPosting{
		ID:          s.uuidGen.NewString(),
		OwnerID:     input.OwnerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Blueprint:   input.Blueprint,
		CreatedAt:   time.Now().UTC(),
	}
	if err := domain.ValidateJobPosting(job); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid job posting", err)
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobPostingService) Get(ctx context.Context, ownerID, id string) (*domain.JobPosting, error) {
	return s.repo.GetForOwner(ctx, ownerID, id)
}
