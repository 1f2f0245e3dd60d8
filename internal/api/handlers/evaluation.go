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

type EvaluationService interface {
	Evaluate(ctx context.Context, in service.EvaluateInput) (*domain.EvaluationRecord, error)
	Get(ctx context.Context, ownerID, candidateID string) (*domain.EvaluationRecord, error)
}

// ArchiveReader reads archived model responses.
type ArchiveReader interface {
	GetJSON(ctx context.Context, key string, v any) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

type EvaluationHandler struct {
	svc     EvaluationService
	archive ArchiveReader
}

// NewEvaluationHandler creates the handler. archive may be nil, in which case
// the raw-response endpoints answer 503.
func NewEvaluationHandler(svc EvaluationService, archive ArchiveReader) *EvaluationHandler {
	return &EvaluationHandler{svc: svc, archive: archive}
}

type EvaluateRequest struct {
	Force bool `json:"force"`
}

type EvaluationResponse struct {
	ID          string             `json:"id"`
	CandidateID string             `json:"candidate_id"`
	Model       string             `json:"model"`
	CreatedAt   string             `json:"created_at"`
	Evaluation  *domain.Evaluation `json:"evaluation"`
}

type DownloadURLResponse struct {
	URL string `json:"url"`
}

func evaluationToResponse(rec *domain.EvaluationRecord) *EvaluationResponse {
	return &EvaluationResponse{
		ID:          rec.ID,
		CandidateID: rec.CandidateID,
		Model:       rec.Model,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
		Evaluation:  rec.Result,
	}
}

func (h *EvaluationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.svc.Evaluate(r.Context(), service.EvaluateInput{
		OwnerID:     middleware.GetOwnerID(r.Context()),
		CandidateID: chi.URLParam(r, "id"),
		Force:       req.Force,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if rec == nil {
		api.HandleError(w, domain.ErrCandidateNotFound)
		return
	}

	api.Success(w, http.StatusOK, evaluationToResponse(rec))
}

func (h *EvaluationHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, evaluationToResponse(rec))
}

// Raw returns the archived model response of the current evaluation.
func (h *EvaluationHandler) Raw(w http.ResponseWriter, r *http.Request) {
	key, ok := h.archiveKey(w, r)
	if !ok {
		return
	}

	var doc json.RawMessage
	if err := h.archive.GetJSON(r.Context(), key, &doc); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, doc)
}

// RawURL returns a presigned download URL for the archived model response.
func (h *EvaluationHandler) RawURL(w http.ResponseWriter, r *http.Request) {
	key, ok := h.archiveKey(w, r)
	if !ok {
		return
	}

	url, err := h.archive.GenerateDownloadURL(r.Context(), key)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, DownloadURLResponse{URL: url})
}

func (h *EvaluationHandler) archiveKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.archive == nil {
		api.HandleError(w, domain.ErrArchiveNotConfigured)
		return "", false
	}
	rec, err := h.svc.Get(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return "", false
	}
	return service.ArchiveKey(rec), true
}
