package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/llm"
	"github.com/cloo-solutions/hirelens/internal/logger"
	"github.com/cloo-solutions/hirelens/internal/normalize"
	"github.com/cloo-solutions/hirelens/internal/telemetry"
)

// EvaluationQuery selects the chunks sent as grounding context.
const EvaluationQuery = "skills experience education qualifications responsibilities achievements projects"

const (
	DefaultLeaseTTL = 5 * time.Minute
	DefaultTopK     = 8
)

// EvaluationConfig holds the orchestrator settings.
type EvaluationConfig struct {
	Retry    RetryPolicy
	LeaseTTL time.Duration
	TopK     int
	Model    string
}

func (c EvaluationConfig) withDefaults() EvaluationConfig {
	c.Retry = c.Retry.withDefaults()
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = DefaultLeaseTTL
	}
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	return c
}

type EvaluationRepository interface {
	GetByCandidate(ctx context.Context, candidateID string) (*domain.EvaluationRecord, error)
	Upsert(ctx context.Context, rec *domain.EvaluationRecord) error
}

// LeaseRepository grants per-candidate evaluation leases. Acquire reports
// false when another holder owns an unexpired lease.
type LeaseRepository interface {
	Acquire(ctx context.Context, candidateID, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, candidateID, holder string) error
}

type AuditRepository interface {
	Record(ctx context.Context, event *domain.AuditEvent) error
}

// Archiver stores a JSON document under key.
type Archiver interface {
	PutJSON(ctx context.Context, key string, v any) error
}

// Retriever is the part of RetrievalService the orchestrators use.
type Retriever interface {
	Retrieve(ctx context.Context, candidateID, query string, topK int) []domain.RetrievedChunk
}

// EvaluationDeps groups the collaborators of EvaluationService. Archive and
// ValidateOutput are optional.
type EvaluationDeps struct {
	Candidates     CandidateRepository
	Jobs           JobPostingRepository
	Evaluations    EvaluationRepository
	Leases         LeaseRepository
	Audit          AuditRepository
	Tx             TxRunner
	Retriever      Retriever
	LLM            llm.Client
	Archive        Archiver
	ValidateOutput func(*domain.Evaluation) error
	UUIDGen        UUIDGenerator
	Logger         *zap.Logger
}

// EvaluationService runs retrieval-augmented candidate evaluations.
type EvaluationService struct {
	deps   EvaluationDeps
	cfg    EvaluationConfig
	retry  retrier
	flight singleflight.Group
	now    func() time.Time
}

func NewEvaluationService(deps EvaluationDeps, cfg EvaluationConfig) *EvaluationService {
	cfg = cfg.withDefaults()
	deps.Logger = logger.OrNop(deps.Logger)
	if deps.UUIDGen == nil {
		deps.UUIDGen = &DefaultUUIDGenerator{}
	}
	if deps.LLM == nil {
		deps.LLM = llm.Unconfigured{}
	}
	return &EvaluationService{
		deps:  deps,
		cfg:   cfg,
		retry: retrier{policy: cfg.Retry, sleep: contextSleep, logger: deps.Logger},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetSleeper replaces the backoff wait. Tests use it to record delays.
func (s *EvaluationService) SetSleeper(fn Sleeper) {
	s.retry.sleep = fn
}

type EvaluateInput struct {
	OwnerID     string
	CandidateID string
	Force       bool
}

// Evaluate returns the candidate's evaluation, running the model when none is
// stored, when the stored one is incomplete, or when Force is set. A candidate
// or job the owner cannot see yields (nil, nil).
//
// Concurrent calls from the same owner share one run. The run is detached
// from the caller's cancellation and bounded by the lease TTL instead, so a
// caller that goes away does not fail the others; it only stops waiting.
func (s *EvaluationService) Evaluate(ctx context.Context, in EvaluateInput) (*domain.EvaluationRecord, error) {
	if in.OwnerID == "" || in.CandidateID == "" {
		return nil, nil
	}

	key := in.OwnerID + ":" + in.CandidateID + ":" + strconv.FormatBool(in.Force)
	ch := s.flight.DoChan(key, func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LeaseTTL)
		defer cancel()
		return s.evaluate(runCtx, in)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.deps.Logger.Debug("joined in-flight evaluation", logger.Candidate(in.CandidateID))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		rec, _ := res.Val.(*domain.EvaluationRecord)
		return rec, nil
	}
}

// Get returns the stored evaluation without running the model.
func (s *EvaluationService) Get(ctx context.Context, ownerID, candidateID string) (*domain.EvaluationRecord, error) {
	if _, err := s.deps.Candidates.GetForOwner(ctx, ownerID, candidateID); err != nil {
		return nil, err
	}
	return s.deps.Evaluations.GetByCandidate(ctx, candidateID)
}

func (s *EvaluationService) evaluate(ctx context.Context, in EvaluateInput) (*domain.EvaluationRecord, error) {
	ctx, span := telemetry.StartSpan(ctx, "EvaluationService.Evaluate", telemetry.SpanAttributes{
		OwnerID:     in.OwnerID,
		CandidateID: in.CandidateID,
	})
	defer span.End()

	log := s.deps.Logger.With(logger.Candidate(in.CandidateID), zap.Bool("force", in.Force))

	candidate, err := s.deps.Candidates.GetForOwner(ctx, in.OwnerID, in.CandidateID)
	if err != nil {
		if errors.Is(err, domain.ErrCandidateNotFound) {
			return nil, nil
		}
		return nil, err
	}
	job, err := s.deps.Jobs.GetForOwner(ctx, in.OwnerID, candidate.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobPostingNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if rec, err := s.reusable(ctx, in); rec != nil || err != nil {
		return rec, err
	}

	holder := s.deps.UUIDGen.NewString()
	ok, err := s.deps.Leases.Acquire(ctx, in.CandidateID, holder, s.cfg.LeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire evaluation lease: %w", err)
	}
	if !ok {
		return nil, domain.ErrEvaluationInProgress
	}
	defer func() {
		if err := s.deps.Leases.Release(context.WithoutCancel(ctx), in.CandidateID, holder); err != nil {
			log.Warn("release evaluation lease", zap.Error(err))
		}
	}()

	// Another holder may have finished between the first check and the lease.
	if rec, err := s.reusable(ctx, in); rec != nil || err != nil {
		return rec, err
	}

	req, err := s.buildRequest(ctx, candidate, job)
	if err != nil {
		return nil, err
	}

	var raw []byte
	result, err := do(ctx, s.retry, "evaluate", func(ctx context.Context, attempt int) (*domain.Evaluation, error) {
		out, err := s.deps.LLM.Evaluate(ctx, req)
		if err != nil {
			return nil, err
		}
		parsed, err := normalize.Parse(out)
		if err != nil {
			return nil, &MalformedResponseError{Err: err}
		}
		raw = out
		return normalize.FromValue(parsed), nil
	})
	if err != nil {
		s.recordFailure(ctx, in, err)
		span.SetError(err)
		return nil, err
	}

	if s.deps.ValidateOutput != nil {
		if verr := s.deps.ValidateOutput(result); verr != nil {
			log.Warn("normalized evaluation failed schema check", zap.Error(verr))
		}
	}

	rec := &domain.EvaluationRecord{
		ID:          s.deps.UUIDGen.NewString(),
		CandidateID: candidate.ID,
		OwnerID:     in.OwnerID,
		Result:      result,
		Model:       s.modelName(),
		CreatedAt:   s.now(),
	}

	s.archive(ctx, rec, raw)

	err = s.deps.Tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Evaluations().Upsert(ctx, rec); err != nil {
			return fmt.Errorf("store evaluation: %w", err)
		}
		return repos.Candidates().UpdateStatus(ctx, candidate.ID, domain.CandidateStatusEvaluated)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	s.audit(ctx, in, domain.AuditEvaluationCompleted, string(result.Decision))
	log.Info("candidate evaluated",
		zap.String("decision", string(result.Decision)),
		zap.Float64("overall_match_score", result.OverallMatchScore),
		zap.Int("criteria", len(result.CriteriaMatches)),
	)
	return rec, nil
}

// reusable returns the stored evaluation when it is complete and not forced.
func (s *EvaluationService) reusable(ctx context.Context, in EvaluateInput) (*domain.EvaluationRecord, error) {
	if in.Force {
		return nil, nil
	}
	existing, err := s.deps.Evaluations.GetByCandidate(ctx, in.CandidateID)
	if err != nil {
		if errors.Is(err, domain.ErrEvaluationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if existing.Result.IsComplete() {
		return existing, nil
	}
	s.deps.Logger.Info("stored evaluation incomplete, re-running", logger.Candidate(in.CandidateID))
	return nil, nil
}

func (s *EvaluationService) buildRequest(ctx context.Context, candidate *domain.Candidate, job *domain.JobPosting) (llm.EvaluateRequest, error) {
	req := llm.EvaluateRequest{JobBlueprint: job.BlueprintText()}
	if candidate.HasProfile() {
		req.CandidateProfile = string(candidate.Profile)
	}

	var chunks []domain.RetrievedChunk
	if s.deps.Retriever != nil {
		chunks = s.deps.Retriever.Retrieve(ctx, candidate.ID, EvaluationQuery, s.cfg.TopK)
	}

	switch {
	case len(chunks) > 0:
		req.CVText = llm.FormatChunks(chunks)
	case req.CandidateProfile != "":
		req.CVText = req.CandidateProfile
	case candidate.CVText != "":
		req.CVText = candidate.CVText
	default:
		return req, domain.ErrEmptyCV
	}
	return req, nil
}

func (s *EvaluationService) modelName() string {
	if m := s.deps.LLM.Model(); m != "" {
		return m
	}
	return s.cfg.Model
}

// ArchiveKey is the object key under which an evaluation's raw model response
// is archived.
func ArchiveKey(rec *domain.EvaluationRecord) string {
	return fmt.Sprintf("evaluations/%s/%s.json", rec.CandidateID, rec.ID)
}

func (s *EvaluationService) archive(ctx context.Context, rec *domain.EvaluationRecord, raw []byte) {
	if s.deps.Archive == nil {
		return
	}
	key := ArchiveKey(rec)
	doc := map[string]any{
		"candidate_id": rec.CandidateID,
		"model":        rec.Model,
		"created_at":   rec.CreatedAt,
		"raw":          json.RawMessage(normalize.ExtractJSON(string(raw))),
		"evaluation":   rec.Result,
	}
	if err := s.deps.Archive.PutJSON(ctx, key, doc); err != nil {
		s.deps.Logger.Warn("archive raw evaluation", logger.Candidate(rec.CandidateID), zap.Error(err))
		telemetry.AddBreadcrumb(ctx, "archive", err.Error())
	}
}

func (s *EvaluationService) recordFailure(ctx context.Context, in EvaluateInput, err error) {
	action := domain.AuditEvaluationFailed
	if errors.Is(err, domain.ErrProviderNotConfigured) {
		action = domain.AuditProviderNotConfigured
		telemetry.CaptureError(ctx, err)
	}
	s.audit(ctx, in, action, err.Error())
	s.deps.Logger.Error("evaluation failed", logger.Candidate(in.CandidateID), zap.Error(err))
}

func (s *EvaluationService) audit(ctx context.Context, in EvaluateInput, action, detail string) {
	if s.deps.Audit == nil {
		return
	}
	event := &domain.AuditEvent{
		ID:          s.deps.UUIDGen.NewString(),
		OwnerID:     in.OwnerID,
		CandidateID: in.CandidateID,
		Action:      action,
		Detail:      logger.Truncate(detail, 1000),
		CreatedAt:   s.now(),
	}
	if err := s.deps.Audit.Record(context.WithoutCancel(ctx), event); err != nil {
		s.deps.Logger.Warn("record audit event", zap.String("action", action), zap.Error(err))
	}
}
