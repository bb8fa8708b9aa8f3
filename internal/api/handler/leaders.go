package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/albapepper/scoracle-cricket/internal/api/respond"
)

// BattingLeaders returns career batting aggregates across all gold matches.
// @Summary Batting leaders
// @Description Players ordered by total runs. Served from mv_batting_leaders.
// @Tags leaders
// @Produce json
// @Param limit query int false "Number of players (max 200)" default(50)
// @Success 200 {object} respond.Envelope{data=[]model.BattingLeader}
// @Failure 400 {object} respond.ErrorResponse
// @Router /leaders/batting [get]
func (h *Handler) BattingLeaders(w http.ResponseWriter, r *http.Request) {
	limit, _, ok := pageParams(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("leaders:batting:%d", limit), h.cache.LeaderTTL(), func(ctx context.Context) (any, *respond.Meta, error) {
		rows, err := h.store.BattingLeaders(ctx, limit)
		if err != nil {
			return nil, nil, err
		}
		return rows, &respond.Meta{Count: len(rows), Limit: limit}, nil
	})
}

// BowlingLeaders returns career bowling aggregates across all gold matches.
// @Summary Bowling leaders
// @Description Players ordered by wickets, then economy. Served from mv_bowling_leaders.
// @Tags leaders
// @Produce json
// @Param limit query int false "Number of players (max 200)" default(50)
// @Success 200 {object} respond.Envelope{data=[]model.BowlingLeader}
// @Failure 400 {object} respond.ErrorResponse
// @Router /leaders/bowling [get]
func (h *Handler) BowlingLeaders(w http.ResponseWriter, r *http.Request) {
	limit, _, ok := pageParams(w, r)
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("leaders:bowling:%d", limit), h.cache.LeaderTTL(), func(ctx context.Context) (any, *respond.Meta, error) {
		rows, err := h.store.BowlingLeaders(ctx, limit)
		if err != nil {
			return nil, nil, err
		}
		return rows, &respond.Meta{Count: len(rows), Limit: limit}, nil
	})
}
