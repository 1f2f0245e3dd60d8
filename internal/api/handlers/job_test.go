package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/service"
)

func TestJobHandler_Create(t *testing.T) {
	svc := new(MockJobService)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateJobPostingInput) bool {
		return in.OwnerID == testOwner && in.Title == "Backend Engineer" && string(in.Blueprint) == `{"must_have":["go"]}`
	})).Return(&domain.JobPosting{
		ID:        "job-1",
		OwnerID:   testOwner,
		Title:     "Backend Engineer",
		Blueprint: []byte(`{"must_have":["go"]}`),
		CreatedAt: created,
	}, nil)

	w := httptest.NewRecorder()
	NewJobHandler(svc).Create(w, newRequest(http.MethodPost, "/jobs", `{"title":"Backend Engineer","blueprint":{"must_have":["go"]}}`))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp JobResponse
	require.NoError(t, decodeData(w.Body.Bytes(), &resp))
	assert.Equal(t, "job-1", resp.ID)
	assert.Equal(t, "2026-03-01T09:00:00Z", resp.CreatedAt)
	assert.JSONEq(t, `{"must_have":["go"]}`, string(resp.Blueprint))
	svc.AssertExpectations(t)
}

func TestJobHandler_Create_MissingTitle(t *testing.T) {
	svc := new(MockJobService)

	w := httptest.NewRecorder()
	NewJobHandler(svc).Create(w, newRequest(http.MethodPost, "/jobs", `{"description":"x"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestJobHandler_Get_NotFound(t *testing.T) {
	svc := new(MockJobService)
	svc.On("Get", mock.Anything, testOwner, "job-x").Return(nil, domain.ErrJobPostingNotFound)

	w := httptest.NewRecorder()
	NewJobHandler(svc).Get(w, newRequest(http.MethodGet, "/jobs/job-x", "", "id", "job-x"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "job posting not found")
}
