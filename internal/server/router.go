package server

import (
	"net/http"

	"github.com/askdocs-ai/askdocs/internal/api"
	"github.com/askdocs-ai/askdocs/internal/api/handlers"
	"github.com/askdocs-ai/askdocs/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	QueryHandler    *handlers.QueryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 10 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Ingest)
		r.Delete("/{id}", cfg.DocumentHandler.Remove)
		r.Post("/{id}/reindex", cfg.DocumentHandler.Reindex)
	})

	r.Post("/query", cfg.QueryHandler.Query)

	return r
}
