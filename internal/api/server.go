// Package api wires the gold read API: middleware, routes and Swagger UI.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/scoracle-cricket/internal/api/handler"
	"github.com/albapepper/scoracle-cricket/internal/cache"
	"github.com/albapepper/scoracle-cricket/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(store handler.Reader, appCache *cache.Cache, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5))

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	h := handler.New(store, appCache, cfg, logger)

	// --- Routes ---
	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.ListMatches)
			r.Route("/{matchID}", func(r chi.Router) {
				r.Get("/", h.GetMatch)
				r.Get("/innings", h.GetInnings)
				r.Get("/batting", h.GetBatting)
				r.Get("/bowling", h.GetBowling)
			})
		})

		r.Get("/leaders/batting", h.BattingLeaders)
		r.Get("/leaders/bowling", h.BowlingLeaders)
	})

	return r
}
