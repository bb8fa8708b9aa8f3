// Package db provides a pgxpool-based connection pool with prepared statement
// registration, health checking and medallion schema provisioning.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-cricket/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a pool for the ETL. Statements referencing gold
// tables fail to prepare before `etl init` has run, so only the health check
// is registered.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	return open(ctx, cfg, baseStatements)
}

// NewReadOnly creates a pool for the API server, also registering the gold
// read statements on every connection. The schema must already exist.
func NewReadOnly(ctx context.Context, cfg *config.Config) (*Pool, error) {
	return open(ctx, cfg, baseStatements, ReadStatements)
}

func open(ctx context.Context, cfg *config.Config, stmts ...map[string]string) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for _, set := range stmts {
			if err := registerPreparedStatements(ctx, conn, set); err != nil {
				return err
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

var baseStatements = map[string]string{
	"health_check": "SELECT 1",
}

// ReadStatements are the gold reads served by the API, keyed by the name
// they are prepared under.
var ReadStatements = map[string]string{
	"gold_matches": `SELECT ` + MatchSummaryColumns + ` FROM ` + config.MatchSummaryTable + `
		ORDER BY match_date DESC NULLS LAST, match_id DESC LIMIT $1 OFFSET $2`,
	"gold_match": `SELECT ` + MatchSummaryColumns + ` FROM ` + config.MatchSummaryTable + ` WHERE match_id = $1`,
	"gold_innings": `SELECT ` + InningsSummaryColumns + ` FROM ` + config.InningsSummaryTable + `
		WHERE match_id = $1 ORDER BY innings_number`,
	"gold_batting": `SELECT ` + BattingStatColumns + ` FROM ` + config.BattingStatsTable + `
		WHERE match_id = $1 ORDER BY team, runs_scored DESC, player_name`,
	"gold_bowling": `SELECT ` + BowlingStatColumns + ` FROM ` + config.BowlingStatsTable + `
		WHERE match_id = $1 ORDER BY team, wickets_taken DESC, economy_rate, player_name`,
	"gold_batting_leaders": `SELECT player_name, matches, runs, balls_faced, fours, sixes,
		high_score, fifties, centuries, strike_rate
		FROM ` + config.BattingLeadersView + ` ORDER BY runs DESC, player_name LIMIT $1`,
	"gold_bowling_leaders": `SELECT player_name, matches, wickets, balls_bowled, runs_conceded,
		maidens, five_wicket_hauls, economy_rate
		FROM ` + config.BowlingLeadersView + ` ORDER BY wickets DESC, economy_rate, player_name LIMIT $1`,
}

// registerPreparedStatements registers statements on a new connection.
// Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn, stmts map[string]string) error {
	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
