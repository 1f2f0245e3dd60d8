package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/hirelens/internal/api/middleware"
	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/service"
)

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Create(ctx context.Context, input service.CreateJobPostingInput) (*domain.JobPosting, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPosting), args.Error(1)
}

func (m *MockJobService) Get(ctx context.Context, ownerID, id string) (*domain.JobPosting, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPosting), args.Error(1)
}

type MockCandidateService struct {
	mock.Mock
}

func (m *MockCandidateService) Create(ctx context.Context, input service.CreateCandidateInput) (*domain.Candidate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateService) Get(ctx context.Context, ownerID, id string) (*domain.Candidate, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateService) List(ctx context.Context, ownerID, jobID, cursor string, limit int) (*service.CandidatePage, error) {
	args := m.Called(ctx, ownerID, jobID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CandidatePage), args.Error(1)
}

func (m *MockCandidateService) RequestIndex(ctx context.Context, ownerID, id string) (*domain.IndexJob, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndexJob), args.Error(1)
}

func (m *MockCandidateService) Chunks(ctx context.Context, ownerID, id string) ([]domain.Chunk, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chunk), args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) BuildProfile(ctx context.Context, ownerID, candidateID string) (json.RawMessage, error) {
	args := m.Called(ctx, ownerID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockEvaluationService struct {
	mock.Mock
}

func (m *MockEvaluationService) Evaluate(ctx context.Context, in service.EvaluateInput) (*domain.EvaluationRecord, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationRecord), args.Error(1)
}

func (m *MockEvaluationService) Get(ctx context.Context, ownerID, candidateID string) (*domain.EvaluationRecord, error) {
	args := m.Called(ctx, ownerID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvaluationRecord), args.Error(1)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) GetJSON(ctx context.Context, key string, v any) error {
	args := m.Called(ctx, key)
	if raw, ok := v.(*json.RawMessage); ok && args.String(0) != "" {
		*raw = json.RawMessage(args.String(0))
	}
	return args.Error(1)
}

func (m *MockArchive) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

type MockAPIKeyService struct {
	mock.Mock
}

func (m *MockAPIKeyService) CreateAPIKey(ctx context.Context, ownerID, name string) (string, error) {
	args := m.Called(ctx, ownerID, name)
	return args.String(0), args.Error(1)
}

func (m *MockAPIKeyService) ListAPIKeys(ctx context.Context, ownerID string) ([]*domain.APIKey, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyService) RevokeAPIKey(ctx context.Context, ownerID, keyID string) error {
	args := m.Called(ctx, ownerID, keyID)
	return args.Error(0)
}

const testOwner = "owner-1"

// newRequest builds a request authenticated as testOwner with chi URL params
// given as alternating key/value pairs.
func newRequest(method, target, body string, params ...string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(params); i += 2 {
		rctx.URLParams.Add(params[i], params[i+1])
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.OwnerIDKey, testOwner)
	return req.WithContext(ctx)
}

func decodeData(body []byte, v any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, v)
}
