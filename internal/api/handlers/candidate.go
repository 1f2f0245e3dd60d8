package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/hirelens/internal/api"
	"github.com/cloo-solutions/hirelens/internal/api/middleware"
	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/ingestion"
	"github.com/cloo-solutions/hirelens/internal/pagination"
	"github.com/cloo-solutions/hirelens/internal/service"
)

type CandidateService interface {
	Create(ctx context.Context, input service.CreateCandidateInput) (*domain.Candidate, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Candidate, error)
	List(ctx context.Context, ownerID, jobID, cursor string, limit int) (*service.CandidatePage, error)
	RequestIndex(ctx context.Context, ownerID, id string) (*domain.IndexJob, error)
	Chunks(ctx context.Context, ownerID, id string) ([]domain.Chunk, error)
}

type CandidateHandler struct {
	svc CandidateService
}

func NewCandidateHandler(svc CandidateService) *CandidateHandler {
	return &CandidateHandler{svc: svc}
}

// CreateCandidateRequest carries the CV as plain text or as HTML. cv_text wins
// when both are set.
type CreateCandidateRequest struct {
	JobID  string `json:"job_id" validate:"required"`
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"omitempty,email"`
	CVText string `json:"cv_text"`
	CVHTML string `json:"cv_html"`
}

type CandidateResponse struct {
	ID        string `json:"id"`
	JobID     string `json:"job_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
	Profile   any    `json:"profile,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CandidateListResponse struct {
	Items      []*CandidateResponse `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
	HasMore    bool                 `json:"has_more"`
}

type IndexJobResponse struct {
	ID          string `json:"id"`
	CandidateID string `json:"candidate_id"`
	Status      string `json:"status"`
}

func candidateToResponse(c *domain.Candidate) *CandidateResponse {
	resp := &CandidateResponse{
		ID:        c.ID,
		JobID:     c.JobID,
		Name:      c.Name,
		Email:     c.Email,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
	if c.HasProfile() {
		resp.Profile = c.Profile
	}
	return resp
}

func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetOwnerID(r.Context())
	if ownerID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateCandidateRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	cvText := req.CVText
	if strings.TrimSpace(cvText) == "" && req.CVHTML != "" {
		text, err := ingestion.ExtractText(req.CVHTML)
		if err != nil {
			if errors.Is(err, ingestion.ErrNoText) {
				api.Error(w, http.StatusBadRequest, "cv_html contains no text")
				return
			}
			api.Error(w, http.StatusBadRequest, "cv_html could not be parsed")
			return
		}
		cvText = text
	}
	if strings.TrimSpace(cvText) == "" {
		api.Error(w, http.StatusBadRequest, "cv_text or cv_html is required")
		return
	}

	candidate, err := h.svc.Create(r.Context(), service.CreateCandidateInput{
		OwnerID: ownerID,
		JobID:   req.JobID,
		Name:    req.Name,
		Email:   req.Email,
		CVText:  cvText,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, candidateToResponse(candidate))
}

func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.svc.Get(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, candidateToResponse(candidate))
}

// List serves GET /jobs/{id}/candidates?cursor=&limit=.
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := pagination.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	page, err := h.svc.List(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"),
		r.URL.Query().Get("cursor"), pagination.ClampLimit(limit))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := CandidateListResponse{
		Items:      make([]*CandidateResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for _, c := range page.Items {
		resp.Items = append(resp.Items, candidateToResponse(c))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *CandidateHandler) Index(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.RequestIndex(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusAccepted, IndexJobResponse{
		ID:          job.ID,
		CandidateID: job.CandidateID,
		Status:      string(job.Status),
	})
}

func (h *CandidateHandler) Chunks(w http.ResponseWriter, r *http.Request) {
	chunks, err := h.svc.Chunks(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	api.Success(w, http.StatusOK, map[string]any{"chunks": chunks})
}
