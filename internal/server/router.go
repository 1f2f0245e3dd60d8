package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/api"
	"github.com/cloo-solutions/hirelens/internal/api/handlers"
	"github.com/cloo-solutions/hirelens/internal/api/middleware"
)

// DefaultMaxBodyBytes bounds request bodies. CVs arrive inline as text or HTML.
const DefaultMaxBodyBytes int64 = 5 * 1024 * 1024

type RouterConfig struct {
	AuthValidator     middleware.AuthValidator
	Logger            *zap.Logger
	MaxBodyBytes      int64
	JobHandler        *handlers.JobHandler
	CandidateHandler  *handlers.CandidateHandler
	ProfileHandler    *handlers.ProfileHandler
	EvaluationHandler *handlers.EvaluationHandler
	APIKeyHandler     *handlers.APIKeyHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBody))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		r.Use(middleware.RequireJSON)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", cfg.JobHandler.Create)
			r.Get("/{id}", cfg.JobHandler.Get)
			r.Get("/{id}/candidates", cfg.CandidateHandler.List)
		})

		r.Route("/candidates", func(r chi.Router) {
			r.Post("/", cfg.CandidateHandler.Create)
			r.Get("/{id}", cfg.CandidateHandler.Get)
			r.Post("/{id}/index", cfg.CandidateHandler.Index)
			r.Get("/{id}/chunks", cfg.CandidateHandler.Chunks)
			r.Post("/{id}/profile", cfg.ProfileHandler.Build)
			r.Post("/{id}/evaluate", cfg.EvaluationHandler.Evaluate)
			r.Get("/{id}/evaluation", cfg.EvaluationHandler.Get)
			r.Get("/{id}/evaluation/raw", cfg.EvaluationHandler.Raw)
			r.Get("/{id}/evaluation/raw/url", cfg.EvaluationHandler.RawURL)
		})

		r.Route("/apikeys", func(r chi.Router) {
			r.Post("/", cfg.APIKeyHandler.Create)
			r.Get("/", cfg.APIKeyHandler.List)
			r.Delete("/{id}", cfg.APIKeyHandler.Revoke)
		})
	})

	return r
}
