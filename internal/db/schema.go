package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/scoracle-cricket/internal/config"
)

// Column lists shared by the store writers and the API reads. Order matters:
// scanners and INSERT argument lists follow it.
const (
	RawMetadataColumns = `match_id, venue, series, season, toss, umpires, tv_umpire,
		reserve_umpire, match_referee, match_days, player_of_the_match, first_innings,
		second_innings, player_replacements, t20_debut, hours_of_play_local_time, points`

	RawEventColumns = `match_id, seq, innings, ball, event, score, bowler, batsman, commentary`

	MetadataColumns = `match_id, venue, series, season, match_date, toss_winner, toss_decision,
		umpire_1, umpire_2, tv_umpire, reserve_umpire, match_referee, player_of_the_match,
		first_innings_team, second_innings_team, debutants, hours_of_play_local_time, points`

	DeliveryColumns = `match_id, seq, over_number, ball_number, ball_in_over, ball_notation,
		bowler, batsman, non_striker, runs_scored, extras, extra_type, is_wicket, wicket_type,
		fielder, innings, innings_number, total_runs, total_wickets, raw_event, commentary`

	MatchSummaryColumns = `match_id, venue, series, season, match_date,
		first_innings_team, first_innings_runs, first_innings_wickets, first_innings_overs,
		second_innings_team, second_innings_runs, second_innings_wickets, second_innings_overs,
		winner, margin, result_type, total_runs, total_wickets, total_boundaries, total_sixes,
		total_extras, player_of_the_match`

	InningsSummaryColumns = `match_id, innings_number, team, total_runs, final_score,
		total_wickets, total_overs, total_balls, boundaries, sixes, dots, singles, twos,
		wides, noballs, byes, legbyes, total_extras, run_rate, powerplay_runs, powerplay_wickets`

	BattingStatColumns = `match_id, player_name, team, runs_scored, balls_faced, fours, sixes,
		strike_rate, is_out, dismissal_type, is_fifty, is_century`

	BowlingStatColumns = `match_id, player_name, team, overs_bowled, balls_bowled, runs_conceded,
		wickets_taken, maidens, economy_rate, wides, noballs, dot_balls, is_three_wicket,
		is_five_wicket`
)

// schema is applied top to bottom; every statement is idempotent.
var schema = []string{
	// ------------------------------------------------------------------
	// Bronze: scraped as captured
	// ------------------------------------------------------------------
	`CREATE TABLE IF NOT EXISTS ` + config.RawMetadataTable + ` (
		match_id                 BIGINT PRIMARY KEY,
		venue                    TEXT,
		series                   TEXT,
		season                   TEXT,
		toss                     TEXT,
		umpires                  TEXT,
		tv_umpire                TEXT,
		reserve_umpire           TEXT,
		match_referee            TEXT,
		match_days               TEXT,
		player_of_the_match      TEXT,
		first_innings            TEXT,
		second_innings           TEXT,
		player_replacements      TEXT,
		t20_debut                TEXT,
		hours_of_play_local_time TEXT,
		points                   TEXT,
		scraped_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.RawEventsTable + ` (
		match_id   BIGINT NOT NULL,
		seq        INTEGER NOT NULL,
		innings    TEXT,
		ball       TEXT,
		event      TEXT,
		score      TEXT,
		bowler     TEXT,
		batsman    TEXT,
		commentary TEXT,
		scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (match_id, seq)
	)`,

	// ------------------------------------------------------------------
	// Silver: canonical records
	// ------------------------------------------------------------------
	`CREATE TABLE IF NOT EXISTS ` + config.MetadataTable + ` (
		match_id                 BIGINT PRIMARY KEY,
		venue                    TEXT,
		series                   TEXT,
		season                   TEXT,
		match_date               DATE,
		toss_winner              TEXT,
		toss_decision            TEXT CHECK (toss_decision IN ('bat', 'field')),
		umpire_1                 TEXT,
		umpire_2                 TEXT,
		tv_umpire                TEXT,
		reserve_umpire           TEXT,
		match_referee            TEXT,
		player_of_the_match      TEXT,
		first_innings_team       TEXT,
		second_innings_team      TEXT,
		debutants                TEXT[],
		hours_of_play_local_time TEXT,
		points                   TEXT,
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.ReplacementsTable + ` (
		match_id         BIGINT NOT NULL REFERENCES ` + config.MetadataTable + ` (match_id) ON DELETE CASCADE,
		player_out       TEXT NOT NULL,
		player_in        TEXT NOT NULL,
		team             TEXT,
		replacement_type TEXT NOT NULL,
		PRIMARY KEY (match_id, player_out, player_in)
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.EventsTable + ` (
		match_id       BIGINT NOT NULL,
		seq            INTEGER NOT NULL,
		over_number    INTEGER,
		ball_number    INTEGER,
		ball_in_over   INTEGER,
		ball_notation  TEXT,
		bowler         TEXT,
		batsman        TEXT,
		non_striker    TEXT,
		runs_scored    INTEGER NOT NULL DEFAULT 0 CHECK (runs_scored >= 0),
		extras         INTEGER NOT NULL DEFAULT 0 CHECK (extras >= 0),
		extra_type     TEXT CHECK (extra_type IN ('wide', 'noball', 'bye', 'legbye')),
		is_wicket      BOOLEAN NOT NULL DEFAULT FALSE,
		wicket_type    TEXT,
		fielder        TEXT,
		innings        TEXT,
		innings_number SMALLINT CHECK (innings_number IN (1, 2)),
		total_runs     INTEGER,
		total_wickets  INTEGER,
		raw_event      TEXT,
		commentary     TEXT,
		PRIMARY KEY (match_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_silver_events_ball ON ` + config.EventsTable + ` (match_id, innings_number, ball_number)`,

	// ------------------------------------------------------------------
	// Gold: aggregates
	// ------------------------------------------------------------------
	`CREATE TABLE IF NOT EXISTS ` + config.MatchSummaryTable + ` (
		match_id               BIGINT PRIMARY KEY,
		venue                  TEXT NOT NULL DEFAULT '',
		series                 TEXT NOT NULL DEFAULT '',
		season                 TEXT NOT NULL DEFAULT '',
		match_date             DATE,
		first_innings_team     TEXT NOT NULL DEFAULT '',
		first_innings_runs     INTEGER NOT NULL,
		first_innings_wickets  INTEGER NOT NULL,
		first_innings_overs    NUMERIC(5,1) NOT NULL,
		second_innings_team    TEXT NOT NULL DEFAULT '',
		second_innings_runs    INTEGER NOT NULL,
		second_innings_wickets INTEGER NOT NULL,
		second_innings_overs   NUMERIC(5,1) NOT NULL,
		winner                 TEXT NOT NULL DEFAULT '',
		margin                 TEXT NOT NULL,
		result_type            TEXT NOT NULL,
		total_runs             INTEGER NOT NULL,
		total_wickets          INTEGER NOT NULL,
		total_boundaries       INTEGER NOT NULL,
		total_sixes            INTEGER NOT NULL,
		total_extras           INTEGER NOT NULL,
		player_of_the_match    TEXT NOT NULL DEFAULT '',
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.InningsSummaryTable + ` (
		match_id          BIGINT NOT NULL,
		innings_number    SMALLINT NOT NULL,
		team              TEXT NOT NULL DEFAULT '',
		total_runs        INTEGER NOT NULL,
		final_score       INTEGER NOT NULL,
		total_wickets     INTEGER NOT NULL,
		total_overs       NUMERIC(5,1) NOT NULL,
		total_balls       INTEGER NOT NULL,
		boundaries        INTEGER NOT NULL,
		sixes             INTEGER NOT NULL,
		dots              INTEGER NOT NULL,
		singles           INTEGER NOT NULL,
		twos              INTEGER NOT NULL,
		wides             INTEGER NOT NULL,
		noballs           INTEGER NOT NULL,
		byes              INTEGER NOT NULL,
		legbyes           INTEGER NOT NULL,
		total_extras      INTEGER NOT NULL,
		run_rate          NUMERIC(6,2) NOT NULL,
		powerplay_runs    INTEGER NOT NULL,
		powerplay_wickets INTEGER NOT NULL,
		PRIMARY KEY (match_id, innings_number)
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.BattingStatsTable + ` (
		match_id       BIGINT NOT NULL,
		player_name    TEXT NOT NULL,
		team           TEXT NOT NULL DEFAULT '',
		runs_scored    INTEGER NOT NULL,
		balls_faced    INTEGER NOT NULL,
		fours          INTEGER NOT NULL,
		sixes          INTEGER NOT NULL,
		strike_rate    NUMERIC(7,2) NOT NULL,
		is_out         BOOLEAN NOT NULL,
		dismissal_type TEXT NOT NULL DEFAULT '',
		is_fifty       BOOLEAN NOT NULL,
		is_century     BOOLEAN NOT NULL,
		PRIMARY KEY (match_id, player_name, team)
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.BowlingStatsTable + ` (
		match_id        BIGINT NOT NULL,
		player_name     TEXT NOT NULL,
		team            TEXT NOT NULL DEFAULT '',
		overs_bowled    NUMERIC(5,1) NOT NULL,
		balls_bowled    INTEGER NOT NULL,
		runs_conceded   INTEGER NOT NULL,
		wickets_taken   INTEGER NOT NULL,
		maidens         INTEGER NOT NULL,
		economy_rate    NUMERIC(6,2) NOT NULL,
		wides           INTEGER NOT NULL,
		noballs         INTEGER NOT NULL,
		dot_balls       INTEGER NOT NULL,
		is_three_wicket BOOLEAN NOT NULL,
		is_five_wicket  BOOLEAN NOT NULL,
		PRIMARY KEY (match_id, player_name, team)
	)`,

	// ------------------------------------------------------------------
	// Gold leaderboards (refreshed after each gold run)
	// ------------------------------------------------------------------
	`CREATE MATERIALIZED VIEW IF NOT EXISTS ` + config.BattingLeadersView + ` AS
		SELECT player_name,
			COUNT(*)::int                                       AS matches,
			SUM(runs_scored)::int                               AS runs,
			SUM(balls_faced)::int                               AS balls_faced,
			SUM(fours)::int                                     AS fours,
			SUM(sixes)::int                                     AS sixes,
			MAX(runs_scored)::int                               AS high_score,
			COUNT(*) FILTER (WHERE is_fifty AND NOT is_century)::int AS fifties,
			COUNT(*) FILTER (WHERE is_century)::int             AS centuries,
			CASE WHEN SUM(balls_faced) > 0
				THEN ROUND(SUM(runs_scored)::numeric * 100 / SUM(balls_faced), 2)
				ELSE 0 END                                      AS strike_rate
		FROM ` + config.BattingStatsTable + `
		GROUP BY player_name`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_mv_batting_leaders_player ON ` + config.BattingLeadersView + ` (player_name)`,
	`CREATE MATERIALIZED VIEW IF NOT EXISTS ` + config.BowlingLeadersView + ` AS
		SELECT player_name,
			COUNT(*)::int                                   AS matches,
			SUM(wickets_taken)::int                         AS wickets,
			SUM(balls_bowled)::int                          AS balls_bowled,
			SUM(runs_conceded)::int                         AS runs_conceded,
			SUM(maidens)::int                               AS maidens,
			COUNT(*) FILTER (WHERE is_five_wicket)::int     AS five_wicket_hauls,
			CASE WHEN SUM(balls_bowled) > 0
				THEN ROUND(SUM(runs_conceded)::numeric * 6 / SUM(balls_bowled), 2)
				ELSE 0 END                                  AS economy_rate
		FROM ` + config.BowlingStatsTable + `
		GROUP BY player_name`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_mv_bowling_leaders_player ON ` + config.BowlingLeadersView + ` (player_name)`,
}

// Migrate provisions every medallion table and view. Safe to rerun.
func (p *Pool) Migrate(ctx context.Context, logger *slog.Logger) error {
	for i, stmt := range schema {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	logger.Info("Schema ready", "statements", len(schema))
	return nil
}
