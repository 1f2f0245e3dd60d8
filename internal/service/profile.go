package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/llm"
	"github.com/cloo-solutions/hirelens/internal/logger"
	"github.com/cloo-solutions/hirelens/internal/normalize"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
)

// ProfileQuery selects chunks for structured profile extraction.
const ProfileQuery = "contact summary experience roles companies education degrees skills"

// ProfileService extracts a structured profile from a candidate's CV.
type ProfileService struct {
	candidates CandidateRepository
	retriever  Retriever
	llm        llm.Client
	audit      AuditRepository
	uuidGen    UUIDGenerator
	topK       int
	retry      retrier
	logger     *zap.Logger
}

func NewProfileService(
	candidates CandidateRepository,
	retriever Retriever,
	client llm.Client,
	audit AuditRepository,
	cfg EvaluationConfig,
	log *zap.Logger,
) *ProfileService {
	cfg = cfg.withDefaults()
	log = logger.OrNop(log)
	if client == nil {
		client = llm.Unconfigured{}
	}
	return &ProfileService{
		candidates: candidates,
		retriever:  retriever,
		llm:        client,
		audit:      audit,
		uuidGen:    &DefaultUUIDGenerator{},
		topK:       cfg.TopK,
		retry:      retrier{policy: cfg.Retry, sleep: contextSleep, logger: log},
		logger:     log,
	}
}

// SetSleeper replaces the backoff wait. Tests use it to record delays.
func (s *ProfileService) SetSleeper(fn Sleeper) {
	s.retry.sleep = fn
}

// BuildProfile parses the CV into a profile object and stores it on the
// candidate. A candidate the owner cannot see yields (nil, nil).
func (s *ProfileService) BuildProfile(ctx context.Context, ownerID, candidateID string) (json.RawMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProfileService.BuildProfile", telemetry.SpanAttributes{
		OwnerID:     ownerID,
		CandidateID: candidateID,
	})
	defer span.End()

	candidate, err := s.candidates.GetForOwner(ctx, ownerID, candidateID)
	if err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunks []domain.RetrievedChunk
	if s.retriever != nil {
		chunks = s.retriever.Retrieve(ctx, candidate.ID, ProfileQuery, s.topK)
	}

	profile, err := do(ctx, s.retry, "parse_profile", func(ctx context.Context, attempt int) (json.RawMessage, error) {
		out, err := s.llm.ParseCVToProfile(ctx, candidate.CVText, chunks)
		if err != nil {
			return nil, err
		}
		m, err := normalize.Parse(out)
		if err != nil {
			return nil, &MalformedResponseError{Err: err}
		}
		return json.Marshal(m)
	})
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotConfigured) {
			s.recordConfigError(ctx, ownerID, candidateID, err)
		}
		span.SetError(err)
		return nil, err
	}

	if err := s.candidates.UpdateProfile(ctx, candidate.ID, profile); err != nil {
		return nil, fmt.Errorf("store profile: %w", err)
	}
	s.logger.Info("candidate profile stored", logger.Candidate(candidate.ID), zap.Int("bytes", len(profile)))
	return profile, nil
}

func (s *ProfileService) recordConfigError(ctx context.Context, ownerID, candidateID string, err error) {
	telemetry.CaptureError(ctx, err)
	if s.audit == nil {
		return
	}
	event := &domain.AuditEvent{
		ID:          s.uuidGen.NewString(),
		OwnerID:     ownerID,
		CandidateID: candidateID,
		Action:      domain.AuditProviderNotConfigured,
		Detail:      err.Error(),
		CreatedAt:   time.Now().UTC(),
	}
	if aerr := s.audit.Record(context.WithoutCancel(ctx), event); aerr != nil {
		s.logger.Warn("record audit event", zap.Error(aerr))
	}
}
