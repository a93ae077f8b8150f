package server

import (
	"net/http"

	"github.com/cloo-solutions/linkdigest/internal/api"
	"github.com/cloo-solutions/linkdigest/internal/api/handlers"
	"github.com/cloo-solutions/linkdigest/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	SummaryHandler    *handlers.SummaryHandler
	SummaryLogHandler *handlers.SummaryLogHandler
	// RateLimiter applies to the summary routes only. Nil disables it.
	RateLimiter *middleware.RateLimiter
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.Sentry)
	r.Use(middleware.AccessLog("/health"))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimiter))

			r.Post("/generate-summary", cfg.SummaryHandler.Generate)
			r.Post("/generate-summary/with-embeddings", cfg.SummaryHandler.GenerateWithEmbeddings)
		})

		logs := cfg.SummaryLogHandler
		if logs == nil {
			logs = handlers.NewSummaryLogHandler(nil)
		}
		r.Get("/summaries", logs.List)
		r.Get("/summaries/{id}", logs.Get)
	})

	return r
}
