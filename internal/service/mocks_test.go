package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/llm"
	"github.com/cloo-solutions/hirelens/internal/pagination"
)

type MockCandidateRepository struct {
	mock.Mock
}

func (m *MockCandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCandidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) GetForOwner(ctx context.Context, ownerID, id string) (*domain.Candidate, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) UpdateStatus(ctx context.Context, id string, status domain.CandidateStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockCandidateRepository) UpdateProfile(ctx context.Context, id string, profile json.RawMessage) error {
	return m.Called(ctx, id, profile).Error(0)
}

func (m *MockCandidateRepository) ListByJob(ctx context.Context, ownerID, jobID string, cursor *pagination.Cursor, limit int) (*CandidatePage, error) {
	args := m.Called(ctx, ownerID, jobID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CandidatePage), args.Error(1)
}

type MockJobPostingRepository struct {
	mock.Mock
}

func (m *MockJobPostingRepository) Create(ctx context.Context, j *domain.JobPosting) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJobPostingRepository) GetForOwner(ctx context.Context, ownerID, id string) (*domain.JobPosting, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPosting), args.Error(1)
}

type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) GetByCandidate(ctx context.Context, candidateID string) (*domain.EvaluationRecord, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationRecord), args.Error(1)
}

func (m *MockEvaluationRepository) Upsert(ctx context.Context, rec *domain.EvaluationRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type MockIndexJobRepository struct {
	mock.Mock
}

func (m *MockIndexJobRepository) Create(ctx context.Context, job *domain.IndexJob) error {
	return m.Called(ctx, job).Error(0)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Save(ctx context.Context, candidateID string, chunks []domain.Chunk) error {
	return m.Called(ctx, candidateID, chunks).Error(0)
}

func (m *MockSnapshotRepository) Get(ctx context.Context, candidateID string) ([]domain.Chunk, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

// MockUUIDGenerator hands out the given ids in order, then "default-uuid".
type MockUUIDGenerator struct {
	mu        sync.Mutex
	callCount int
	uuids     []string
}

func NewMockUUIDGenerator(uuids ...string) *MockUUIDGenerator {
	return &MockUUIDGenerator{uuids: uuids}
}

func (m *MockUUIDGenerator) NewString() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.callCount < len(m.uuids) {
		id := m.uuids[m.callCount]
		m.callCount++
		return id
	}
	return "default-uuid"
}

// fakeLeases is an in-memory lease table.
type fakeLeases struct {
	mu       sync.Mutex
	held     map[string]string
	acquired int
	released int
}

func newFakeLeases() *fakeLeases {
	return &fakeLeases{held: make(map[string]string)}
}

func (f *fakeLeases) Acquire(_ context.Context, candidateID, holder string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[candidateID]; ok {
		return false, nil
	}
	f.held[candidateID] = holder
	f.acquired++
	return true, nil
}

func (f *fakeLeases) Release(_ context.Context, candidateID, holder string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[candidateID] == holder {
		delete(f.held, candidateID)
		f.released++
	}
	return nil
}

type fakeAudit struct {
	mu     sync.Mutex
	events []*domain.AuditEvent
}

func (f *fakeAudit) Record(_ context.Context, e *domain.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Action)
	}
	return out
}

type llmReply struct {
	out string
	err error
}

// scriptedLLM replays replies in order and repeats the last one.
type scriptedLLM struct {
	mu       sync.Mutex
	replies  []llmReply
	calls    int
	requests []llm.EvaluateRequest
	chunks   []domain.RetrievedChunk
}

func (s *scriptedLLM) next() llmReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(s.calls, len(s.replies)-1)
	s.calls++
	return s.replies[i]
}

func (s *scriptedLLM) Evaluate(_ context.Context, req llm.EvaluateRequest) ([]byte, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	r := s.next()
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.out), nil
}

func (s *scriptedLLM) ParseCVToProfile(_ context.Context, _ string, chunks []domain.RetrievedChunk) ([]byte, error) {
	s.mu.Lock()
	s.chunks = chunks
	s.mu.Unlock()
	r := s.next()
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.out), nil
}

func (s *scriptedLLM) Model() string {
	return "scripted"
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubRetriever struct {
	chunks []domain.RetrievedChunk
}

func (s stubRetriever) Retrieve(context.Context, string, string, int) []domain.RetrievedChunk {
	return s.chunks
}

// sleepRecorder records backoff waits without sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}
