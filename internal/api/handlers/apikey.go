package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/hirelens/internal/api"
	"github.com/cloo-solutions/hirelens/internal/api/middleware"
	"github.com/cloo-solutions/hirelens/internal/domain"
)

type APIKeyService interface {
	CreateAPIKey(ctx context.Context, ownerID, name string) (string, error)
	ListAPIKeys(ctx context.Context, ownerID string) ([]*domain.APIKey, error)
	RevokeAPIKey(ctx context.Context, ownerID, keyID string) error
}

// APIKeyHandler lets an authenticated owner manage their own keys. The first
// key is issued with `hirelensd apikey create`.
type APIKeyHandler struct {
	svc APIKeyService
}

func NewAPIKeyHandler(svc APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{svc: svc}
}

type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type APIKeyResponse struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Token     string `json:"token,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	Revoked   bool   `json:"revoked"`
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.svc.CreateAPIKey(r.Context(), middleware.GetOwnerID(r.Context()), req.Name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, APIKeyResponse{Name: req.Name, Token: token})
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.svc.ListAPIKeys(r.Context(), middleware.GetOwnerID(r.Context()))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, APIKeyResponse{
			ID:        k.ID,
			Name:      k.Name,
			CreatedAt: k.CreatedAt.Format(time.RFC3339),
			Revoked:   k.IsRevoked(),
		})
	}
	api.Success(w, http.StatusOK, out)
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RevokeAPIKey(r.Context(), middleware.GetOwnerID(r.Context()), chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
