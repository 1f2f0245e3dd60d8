package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/hirelens/internal/api"
	"github.com/cloo-solutions/hirelens/internal/api/middleware"
	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/service"
)

type JobService interface {
	Create(ctx context.Context, input service.CreateJobPostingInput) (*domain.JobPosting, error)
	Get(ctx context.Context, ownerID, id string) (*domain.JobPosting, error)
}

type JobHandler struct {
	svc JobService
}

func NewJobHandler(svc JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

type CreateJobRequest struct {
	Title       string          `json:"title" validate:"required,max=300"`
	Description string          `json:"description"`
	Blueprint   json.RawMessage `json:"blueprint"`
}

type JobResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Blueprint   json.RawMessage `json:"blueprint,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func jobToResponse(j *domain.JobPosting) *JobResponse {
	return &JobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Blueprint:   j.Blueprint,
		CreatedAt:   j.CreatedAt.Format(time.RFC3339),
	}
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateJobRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.svc.Create(r.Context(), service.CreateJobPostingInput{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Blueprint:   req.Blueprint,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, jobToResponse(job))
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Get(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, jobToResponse(job))
}
