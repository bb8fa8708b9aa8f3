package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/scoracle-cricket/internal/api/respond"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// pageParams reads limit/offset. ok is false after an error was written.
func pageParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit, offset = defaultLimit, 0
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return 0, 0, false
		}
		limit = min(n, maxLimit)
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_OFFSET", "offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

func matchID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "matchID"), 10, 64)
	if err != nil || id <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "match id must be a positive integer")
		return 0, false
	}
	return id, true
}

// ListMatches returns match summaries, most recent first.
// @Summary List matches
// @Description Returns gold match summaries ordered by match date, newest first.
// @Tags matches
// @Produce json
// @Param limit query int false "Page size (max 200)" default(50)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} respond.Envelope{data=[]model.MatchSummary}
// @Failure 400 {object} respond.ErrorResponse
// @Router /matches [get]
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}
	key := fmt.Sprintf("matches:%d:%d", limit, offset)
	h.serveCached(w, r, key, h.cache.MatchTTL(), func(ctx context.Context) (any, *respond.Meta, error) {
		rows, err := h.store.Matches(ctx, limit, offset)
		if err != nil {
			return nil, nil, err
		}
		return rows, &respond.Meta{Count: len(rows), Limit: limit, Offset: offset}, nil
	})
}

// GetMatch returns one match summary.
// @Summary Get match summary
// @Description Returns the result, innings totals and match-level aggregates of one match.
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} respond.Envelope{data=model.MatchSummary}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /matches/{matchID} [get]
func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("match:%d", id), h.cache.MatchTTL(), func(ctx context.Context) (any, *respond.Meta, error) {
		s, found, err := h.store.MatchSummary(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			return nil, nil, errNotFound
		}
		return s, nil, nil
	})
}

// GetInnings returns the innings summaries of one match.
// @Summary Get innings summaries
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} respond.Envelope{data=[]model.InningsSummary}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /matches/{matchID}/innings [get]
func (h *Handler) GetInnings(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("innings:%d", id), h.cache.MatchTTL(), func(ctx context.Context) (any, *respond.Meta, error) {
		return nonEmpty(h.store.Innings(ctx, id))
	})
}

// GetBatting returns the batting lines of one match.
// @Summary Get batting stats
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} respond.Envelope{data=[]model.BattingStat}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /matches/{matchID}/batting [get]
func (h *Handler) GetBatting(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("batting:%d", id), h.cache.MatchTTL(), func(ctx context.Context) (any, *respond.Meta, error) {
		return nonEmpty(h.store.Batting(ctx, id))
	})
}

// GetBowling returns the bowling figures of one match.
// @Summary Get bowling stats
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} respond.Envelope{data=[]model.BowlingStat}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /matches/{matchID}/bowling [get]
func (h *Handler) GetBowling(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("bowling:%d", id), h.cache.MatchTTL(), func(ctx context.Context) (any, *respond.Meta, error) {
		return nonEmpty(h.store.Bowling(ctx, id))
	})
}

// nonEmpty maps an empty per-match result to errNotFound.
func nonEmpty[T any](rows []T, err error) (any, *respond.Meta, error) {
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errNotFound
	}
	return rows, nil, nil
}
