package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbital-research/bioastra/internal/api"
	"github.com/orbital-research/bioastra/internal/api/handlers"
	"github.com/orbital-research/bioastra/internal/api/middleware"
)

type RouterConfig struct {
	APIToken        string
	AskHandler      *handlers.AskHandler
	DocumentHandler *handlers.DocumentHandler
	MediaHandler    *handlers.MediaHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Post("/ask", cfg.AskHandler.Ask)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.Ingest)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/{source}", cfg.DocumentHandler.Get)
		})

		r.Get("/jobs/{id}", cfg.DocumentHandler.GetJob)
		r.Get("/media/url", cfg.MediaHandler.GetURL)
	})

	return r
}
