package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/llm"
)

func newProfileFixture(client *scriptedLLM, retriever Retriever) (*ProfileService, *MockCandidateRepository, *fakeAudit, *sleepRecorder) {
	candidates := new(MockCandidateRepository)
	audit := &fakeAudit{}
	rec := &sleepRecorder{}
	svc := NewProfileService(candidates, retriever, client, audit, EvaluationConfig{}, zap.NewNop())
	svc.SetSleeper(rec.sleep)
	return svc, candidates, audit, rec
}

func TestProfileService_BuildProfile(t *testing.T) {
	client := &scriptedLLM{replies: []llmReply{{out: "```json\n{\"name\": \"Ada\", \"skills\": [\"go\"]}\n```"}}}
	retrieved := []domain.RetrievedChunk{{Chunk: domain.Chunk{Index: 0, Text: "Ada Lovelace"}, RelevanceScore: 0.8}}
	svc, candidates, _, _ := newProfileFixture(client, stubRetriever{chunks: retrieved})

	candidates.On("GetForOwner", mock.Anything, "owner-1", "cand-1").Return(&domain.Candidate{ID: "cand-1", CVText: "cv"}, nil)
	candidates.On("UpdateProfile", mock.Anything, "cand-1", mock.Anything).Return(nil)

	profile, err := svc.BuildProfile(context.Background(), "owner-1", "cand-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada","skills":["go"]}`, string(profile))
	assert.Equal(t, retrieved, client.chunks)

	stored := candidates.Calls[1].Arguments.Get(2).(json.RawMessage)
	assert.JSONEq(t, string(profile), string(stored))
}

func TestProfileService_UnknownCandidate(t *testing.T) {
	client := &scriptedLLM{replies: []llmReply{{out: "{}"}}}
	svc, candidates, _, _ := newProfileFixture(client, nil)
	candidates.On("GetForOwner", mock.Anything, "owner-2", "cand-1").Return(nil, domain.ErrCandidateNotFound)

	profile, err := svc.BuildProfile(context.Background(), "owner-2", "cand-1")
	assert.NoError(t, err)
	assert.Nil(t, profile)
	assert.Zero(t, client.callCount())
}

func TestProfileService_RetriesOverload(t *testing.T) {
	client := &scriptedLLM{replies: []llmReply{
		{err: &llm.ProviderError{StatusCode: http.StatusTooManyRequests}},
		{out: `{"name":"Ada"}`},
	}}
	svc, candidates, _, rec := newProfileFixture(client, nil)
	candidates.On("GetForOwner", mock.Anything, "owner-1", "cand-1").Return(&domain.Candidate{ID: "cand-1", CVText: "cv"}, nil)
	candidates.On("UpdateProfile", mock.Anything, "cand-1", mock.Anything).Return(nil)

	_, err := svc.BuildProfile(context.Background(), "owner-1", "cand-1")
	require.NoError(t, err)
	assert.Equal(t, 2, client.callCount())
	assert.Equal(t, []time.Duration{2 * time.Second}, rec.delays)
}

func TestProfileService_NotConfigured(t *testing.T) {
	client := &scriptedLLM{replies: []llmReply{{err: domain.ErrProviderNotConfigured}}}
	svc, candidates, audit, _ := newProfileFixture(client, nil)
	candidates.On("GetForOwner", mock.Anything, "owner-1", "cand-1").Return(&domain.Candidate{ID: "cand-1", CVText: "cv"}, nil)

	_, err := svc.BuildProfile(context.Background(), "owner-1", "cand-1")
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	assert.Equal(t, []string{domain.AuditProviderNotConfigured}, audit.actions())
	candidates.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileService_StoreFailure(t *testing.T) {
	client := &scriptedLLM{replies: []llmReply{{out: `{"name":"Ada"}`}}}
	svc, candidates, _, _ := newProfileFixture(client, nil)
	candidates.On("GetForOwner", mock.Anything, "owner-1", "cand-1").Return(&domain.Candidate{ID: "cand-1", CVText: "cv"}, nil)
	candidates.On("UpdateProfile", mock.Anything, "cand-1", mock.Anything).Return(errors.New("conn reset"))

	_, err := svc.BuildProfile(context.Background(), "owner-1", "cand-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store profile")
}
