// Package handler provides HTTP handlers for the gold read API.
// Handlers read through a Reader and cache the encoded bodies with ETags.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/scoracle-cricket/internal/api/respond"
	"github.com/albapepper/scoracle-cricket/internal/cache"
	"github.com/albapepper/scoracle-cricket/internal/config"
	"github.com/albapepper/scoracle-cricket/internal/model"
)

// Reader is the gold read surface. It is implemented by store.Postgres and
// store.Memory.
type Reader interface {
	Ping(ctx context.Context) error
	Matches(ctx context.Context, limit, offset int) ([]model.MatchSummary, error)
	MatchSummary(ctx context.Context, matchID int64) (model.MatchSummary, bool, error)
	Innings(ctx context.Context, matchID int64) ([]model.InningsSummary, error)
	Batting(ctx context.Context, matchID int64) ([]model.BattingStat, error)
	Bowling(ctx context.Context, matchID int64) ([]model.BowlingStat, error)
	BattingLeaders(ctx context.Context, limit int) ([]model.BattingLeader, error)
	BowlingLeaders(ctx context.Context, limit int) ([]model.BowlingLeader, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store  Reader
	cache  *cache.Cache
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(store Reader, c *cache.Cache, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{store: store, cache: c, cfg: cfg, logger: logger}
}

// errNotFound is returned by a loader when the requested match has no gold rows.
var errNotFound = errors.New("not found")

type loader func(ctx context.Context) (any, *respond.Meta, error)

// serveCached answers from the cache when possible, honouring If-None-Match,
// and otherwise runs load and caches the encoded body.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, load loader) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, meta, err := load(r.Context())
	if errors.Is(err, errNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No gold data for this match")
		return
	}
	if err != nil {
		h.logger.Error("Read failed", "path", r.URL.Path, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to read gold data")
		return
	}
	data, err := respond.Encode(v, meta)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Failed to encode response")
		return
	}

	etag := h.cache.Set(key, data, ttl)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, false)
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and the docs location.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":        "Scoracle Cricket API",
		"version":     "1.0.0",
		"status":      "running",
		"environment": h.cfg.Environment,
		"docs":        "/docs/",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies store connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
