package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/hirelens/internal/api"
	"github.com/cloo-solutions/hirelens/internal/api/middleware"
	"github.com/cloo-solutions/hirelens/internal/domain"
)

type ProfileService interface {
	BuildProfile(ctx context.Context, ownerID, candidateID string) (json.RawMessage, error)
}

type ProfileHandler struct {
	svc ProfileService
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Build parses the candidate's CV into a structured profile and stores it.
func (h *ProfileHandler) Build(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.BuildProfile(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if profile == nil {
		api.HandleError(w, domain.ErrCandidateNotFound)
		return
	}
	api.Success(w, http.StatusOK, map[string]json.RawMessage{"profile": profile})
}
