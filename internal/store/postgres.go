package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/albapepper/scoracle-cricket/internal/config"
	"github.com/albapepper/scoracle-cricket/internal/db"
	"github.com/albapepper/scoracle-cricket/internal/model"
)

// Postgres implements every stage's persistence on a pgx pool. Each
// per-match replace runs in its own transaction so readers never observe a
// half-written match.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// --------------------------------------------------------------------------
// Bronze
// --------------------------------------------------------------------------

// InsertRawMetadata writes a scraped metadata record, replacing any earlier
// capture of the same match.
func (p *Postgres) InsertRawMetadata(ctx context.Context, md model.RawMatchMetadata) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO `+config.RawMetadataTable+` (`+db.RawMetadataColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (match_id) DO UPDATE SET
			venue = EXCLUDED.venue,
			series = EXCLUDED.series,
			season = EXCLUDED.season,
			toss = EXCLUDED.toss,
			umpires = EXCLUDED.umpires,
			tv_umpire = EXCLUDED.tv_umpire,
			reserve_umpire = EXCLUDED.reserve_umpire,
			match_referee = EXCLUDED.match_referee,
			match_days = EXCLUDED.match_days,
			player_of_the_match = EXCLUDED.player_of_the_match,
			first_innings = EXCLUDED.first_innings,
			second_innings = EXCLUDED.second_innings,
			player_replacements = EXCLUDED.player_replacements,
			t20_debut = EXCLUDED.t20_debut,
			hours_of_play_local_time = EXCLUDED.hours_of_play_local_time,
			points = EXCLUDED.points,
			scraped_at = NOW()`,
		md.MatchID, nilEmpty(md.Venue), nilEmpty(md.Series), nilEmpty(md.Season),
		nilEmpty(md.Toss), nilEmpty(md.Umpires), nilEmpty(md.TVUmpire),
		nilEmpty(md.ReserveUmpire), nilEmpty(md.MatchReferee), nilEmpty(md.MatchDays),
		nilEmpty(md.PlayerOfMatch), nilEmpty(md.FirstInnings), nilEmpty(md.SecondInnings),
		nilEmpty(md.PlayerReplacements), nilEmpty(md.Debuts), nilEmpty(md.HoursOfPlay),
		nilEmpty(md.Points),
	)
	return err
}

// InsertRawDeliveries writes a match's scraped rows. Re-importing a match
// replaces its earlier capture.
func (p *Postgres) InsertRawDeliveries(ctx context.Context, matchID int64, rows []model.RawDelivery) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM `+config.RawEventsTable+` WHERE match_id = $1`, matchID); err != nil {
			return fmt.Errorf("delete raw events: %w", err)
		}
		b := &pgx.Batch{}
		for _, r := range rows {
			b.Queue(`INSERT INTO `+config.RawEventsTable+` (`+db.RawEventColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				matchID, r.Seq, nilEmpty(r.InningsLabel), nilEmpty(r.Ball), nilEmpty(r.EventText),
				nilEmpty(r.ScoreText), nilEmpty(r.BowlerName), nilEmpty(r.BatsmanName),
				nilEmpty(r.CommentaryText),
			)
		}
		_, err := sendBatch(ctx, tx, b)
		return err
	})
}

func (p *Postgres) RawMetadata(ctx context.Context) ([]model.RawMatchMetadata, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT match_id,
			COALESCE(venue, ''), COALESCE(series, ''), COALESCE(season, ''),
			COALESCE(toss, ''), COALESCE(umpires, ''), COALESCE(tv_umpire, ''),
			COALESCE(reserve_umpire, ''), COALESCE(match_referee, ''), COALESCE(match_days, ''),
			COALESCE(player_of_the_match, ''), COALESCE(first_innings, ''),
			COALESCE(second_innings, ''), COALESCE(player_replacements, ''),
			COALESCE(t20_debut, ''), COALESCE(hours_of_play_local_time, ''), COALESCE(points, '')
		FROM `+config.RawMetadataTable+`
		ORDER BY match_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.RawMatchMetadata])
}

func (p *Postgres) RawDeliveries(ctx context.Context, matchIDs []int64) ([]model.RawDelivery, error) {
	if matchIDs == nil {
		matchIDs = []int64{} // NULL would match nothing
	}
	rows, err := p.pool.Query(ctx, `
		SELECT match_id, seq,
			COALESCE(innings, ''), COALESCE(ball, ''), COALESCE(event, ''), COALESCE(score, ''),
			COALESCE(bowler, ''), COALESCE(batsman, ''), COALESCE(commentary, '')
		FROM `+config.RawEventsTable+`
		WHERE cardinality($1::bigint[]) = 0 OR match_id = ANY($1)
		ORDER BY match_id, seq`, matchIDs)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.RawDelivery])
}

// --------------------------------------------------------------------------
// Silver
// --------------------------------------------------------------------------

func (p *Postgres) UpsertMetadata(ctx context.Context, md model.MatchMetadata) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO `+config.MetadataTable+` (`+db.MetadataColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (match_id) DO UPDATE SET
			venue = EXCLUDED.venue,
			series = EXCLUDED.series,
			season = EXCLUDED.season,
			match_date = EXCLUDED.match_date,
			toss_winner = EXCLUDED.toss_winner,
			toss_decision = EXCLUDED.toss_decision,
			umpire_1 = EXCLUDED.umpire_1,
			umpire_2 = EXCLUDED.umpire_2,
			tv_umpire = EXCLUDED.tv_umpire,
			reserve_umpire = EXCLUDED.reserve_umpire,
			match_referee = EXCLUDED.match_referee,
			player_of_the_match = EXCLUDED.player_of_the_match,
			first_innings_team = EXCLUDED.first_innings_team,
			second_innings_team = EXCLUDED.second_innings_team,
			debutants = EXCLUDED.debutants,
			hours_of_play_local_time = EXCLUDED.hours_of_play_local_time,
			points = EXCLUDED.points,
			updated_at = NOW()`,
		md.MatchID, nilEmpty(md.Venue), nilEmpty(md.Series), nilEmpty(md.Season),
		md.MatchDate, nilEmpty(md.TossWinner), nilEmpty(md.TossDecision),
		nilEmpty(md.Umpire1), nilEmpty(md.Umpire2), nilEmpty(md.TVUmpire),
		nilEmpty(md.ReserveUmpire), nilEmpty(md.MatchReferee), nilEmpty(md.PlayerOfMatch),
		nilEmpty(md.FirstInningsTeam), nilEmpty(md.SecondInningsTeam), md.Debutants,
		nilEmpty(md.HoursOfPlay), nilEmpty(md.Points),
	)
	return err
}

func (p *Postgres) InsertReplacements(ctx context.Context, rows []model.PlayerReplacement) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	b := &pgx.Batch{}
	for _, r := range rows {
		b.Queue(`INSERT INTO `+config.ReplacementsTable+`
			(match_id, player_out, player_in, team, replacement_type)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT DO NOTHING`,
			r.MatchID, r.PlayerOut, r.PlayerIn, nilEmpty(r.Team), r.ReplacementType,
		)
	}
	var inserted int64
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		n, err := sendBatch(ctx, tx, b)
		inserted = n
		return err
	})
	return int(inserted), err
}

func (p *Postgres) InningsTeams(ctx context.Context) (map[int64]model.InningsTeams, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT match_id, COALESCE(first_innings_team, ''), COALESCE(second_innings_team, '')
		FROM `+config.MetadataTable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]model.InningsTeams)
	for rows.Next() {
		var id int64
		var t model.InningsTeams
		if err := rows.Scan(&id, &t.First, &t.Second); err != nil {
			return nil, err
		}
		out[id] = t
	}
	return out, rows.Err()
}

func (p *Postgres) ReplaceDeliveries(ctx context.Context, matchID int64, rows []model.Delivery) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM `+config.EventsTable+` WHERE match_id = $1`, matchID); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		b := &pgx.Batch{}
		for _, d := range rows {
			b.Queue(`INSERT INTO `+config.EventsTable+` (`+db.DeliveryColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
				matchID, d.Seq, d.OverNumber, d.BallNumber, d.BallInOver, nilEmpty(d.BallNotation),
				nilEmpty(d.Bowler), nilEmpty(d.Batsman), nilEmpty(d.NonStriker),
				d.RunsScored, d.Extras, nilEmpty(string(d.ExtraType)), d.IsWicket,
				nilEmpty(string(d.WicketType)), nilEmpty(d.Fielder), nilEmpty(d.InningsTeam),
				nilZero(d.InningsNumber), d.TotalRuns, d.TotalWickets,
				nilEmpty(d.RawEvent), nilEmpty(d.Commentary),
			)
		}
		_, err := sendBatch(ctx, tx, b)
		return err
	})
}

func (p *Postgres) MatchIDs(ctx context.Context) ([]int64, error) {
	rows, err := p.pool.Query(ctx, `SELECT match_id FROM `+config.MetadataTable+` ORDER BY match_id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (p *Postgres) Metadata(ctx context.Context, matchID int64) (model.MatchMetadata, bool, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT match_id,
			COALESCE(venue, ''), COALESCE(series, ''), COALESCE(season, ''), match_date,
			COALESCE(toss_winner, ''), COALESCE(toss_decision, ''),
			COALESCE(umpire_1, ''), COALESCE(umpire_2, ''), COALESCE(tv_umpire, ''),
			COALESCE(reserve_umpire, ''), COALESCE(match_referee, ''),
			COALESCE(player_of_the_match, ''), COALESCE(first_innings_team, ''),
			COALESCE(second_innings_team, ''), debutants,
			COALESCE(hours_of_play_local_time, ''), COALESCE(points, '')
		FROM `+config.MetadataTable+`
		WHERE match_id = $1`, matchID)
	if err != nil {
		return model.MatchMetadata{}, false, err
	}
	md, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[model.MatchMetadata])
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchMetadata{}, false, nil
	}
	if err != nil {
		return model.MatchMetadata{}, false, err
	}
	return md, true, nil
}

func (p *Postgres) Deliveries(ctx context.Context, matchID int64) ([]model.Delivery, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT match_id, seq, over_number, ball_number, ball_in_over,
			COALESCE(ball_notation, ''), COALESCE(bowler, ''), COALESCE(batsman, ''),
			COALESCE(non_striker, ''), runs_scored, extras, COALESCE(extra_type, ''),
			is_wicket, COALESCE(wicket_type, ''), COALESCE(fielder, ''), COALESCE(innings, ''),
			COALESCE(innings_number, 0), total_runs, total_wickets,
			COALESCE(raw_event, ''), COALESCE(commentary, '')
		FROM `+config.EventsTable+`
		WHERE match_id = $1
		ORDER BY innings_number NULLS LAST, ball_number NULLS LAST, seq`, matchID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.Delivery])
}

// --------------------------------------------------------------------------
// Gold
// --------------------------------------------------------------------------

// WriteGold stores one match's aggregates in a single transaction. In
// replace mode every earlier gold row for the match is purged first; in
// insert-missing mode only the match summary is updated and existing
// innings/player rows are left as they are.
func (p *Postgres) WriteGold(ctx context.Context, set model.GoldSet, mode model.GoldWriteMode) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		if mode == model.GoldReplace {
			for _, table := range []string{
				config.MatchSummaryTable, config.InningsSummaryTable,
				config.BattingStatsTable, config.BowlingStatsTable,
			} {
				b.Queue(`DELETE FROM `+table+` WHERE match_id = $1`, set.MatchID)
			}
		}
		if s := set.Summary; s != nil {
			queueMatchSummary(b, *s)
		}
		for _, in := range set.Innings {
			b.Queue(`INSERT INTO `+config.InningsSummaryTable+` (`+db.InningsSummaryColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
				ON CONFLICT DO NOTHING`,
				in.MatchID, in.InningsNumber, in.Team, in.TotalRuns, in.FinalScore,
				in.TotalWickets, in.TotalOvers, in.TotalBalls, in.Boundaries, in.Sixes,
				in.Dots, in.Singles, in.Twos, in.Wides, in.NoBalls, in.Byes, in.LegByes,
				in.TotalExtras, in.RunRate, in.PowerplayRuns, in.PowerplayWickets,
			)
		}
		for _, bs := range set.Batting {
			b.Queue(`INSERT INTO `+config.BattingStatsTable+` (`+db.BattingStatColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
				ON CONFLICT DO NOTHING`,
				bs.MatchID, bs.PlayerName, bs.Team, bs.RunsScored, bs.BallsFaced, bs.Fours,
				bs.Sixes, bs.StrikeRate, bs.IsOut, string(bs.DismissalType), bs.IsFifty, bs.IsCentury,
			)
		}
		for _, bw := range set.Bowling {
			b.Queue(`INSERT INTO `+config.BowlingStatsTable+` (`+db.BowlingStatColumns+`)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
				ON CONFLICT DO NOTHING`,
				bw.MatchID, bw.PlayerName, bw.Team, bw.OversBowled, bw.BallsBowled,
				bw.RunsConceded, bw.WicketsTaken, bw.Maidens, bw.EconomyRate, bw.Wides,
				bw.NoBalls, bw.DotBalls, bw.IsThreeWicket, bw.IsFiveWicket,
			)
		}
		_, err := sendBatch(ctx, tx, b)
		return err
	})
}

func queueMatchSummary(b *pgx.Batch, s model.MatchSummary) {
	b.Queue(`
		INSERT INTO `+config.MatchSummaryTable+` (`+db.MatchSummaryColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		ON CONFLICT (match_id) DO UPDATE SET
			venue = EXCLUDED.venue,
			series = EXCLUDED.series,
			season = EXCLUDED.season,
			match_date = EXCLUDED.match_date,
			first_innings_team = EXCLUDED.first_innings_team,
			first_innings_runs = EXCLUDED.first_innings_runs,
			first_innings_wickets = EXCLUDED.first_innings_wickets,
			first_innings_overs = EXCLUDED.first_innings_overs,
			second_innings_team = EXCLUDED.second_innings_team,
			second_innings_runs = EXCLUDED.second_innings_runs,
			second_innings_wickets = EXCLUDED.second_innings_wickets,
			second_innings_overs = EXCLUDED.second_innings_overs,
			winner = EXCLUDED.winner,
			margin = EXCLUDED.margin,
			result_type = EXCLUDED.result_type,
			total_runs = EXCLUDED.total_runs,
			total_wickets = EXCLUDED.total_wickets,
			total_boundaries = EXCLUDED.total_boundaries,
			total_sixes = EXCLUDED.total_sixes,
			total_extras = EXCLUDED.total_extras,
			player_of_the_match = EXCLUDED.player_of_the_match,
			updated_at = NOW()`,
		s.MatchID, s.Venue, s.Series, s.Season, s.MatchDate,
		s.FirstInningsTeam, s.FirstInningsRuns, s.FirstInningsWickets, s.FirstInningsOvers,
		s.SecondInningsTeam, s.SecondInningsRuns, s.SecondInningsWickets, s.SecondInningsOvers,
		s.Winner, s.Margin, s.ResultType, s.TotalRuns, s.TotalWickets, s.TotalBoundaries,
		s.TotalSixes, s.TotalExtras, s.PlayerOfMatch,
	)
}

// --------------------------------------------------------------------------
// Gold reads (API). These use the statements prepared by db.NewReadOnly.
// --------------------------------------------------------------------------

// Ping runs the prepared health check.
func (p *Postgres) Ping(ctx context.Context) error {
	var n int
	return p.pool.QueryRow(ctx, "health_check").Scan(&n)
}

func (p *Postgres) Matches(ctx context.Context, limit, offset int) ([]model.MatchSummary, error) {
	rows, err := p.pool.Query(ctx, "gold_matches", limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.MatchSummary])
}

func (p *Postgres) MatchSummary(ctx context.Context, matchID int64) (model.MatchSummary, bool, error) {
	rows, err := p.pool.Query(ctx, "gold_match", matchID)
	if err != nil {
		return model.MatchSummary{}, false, err
	}
	s, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[model.MatchSummary])
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchSummary{}, false, nil
	}
	if err != nil {
		return model.MatchSummary{}, false, err
	}
	return s, true, nil
}

func (p *Postgres) Innings(ctx context.Context, matchID int64) ([]model.InningsSummary, error) {
	rows, err := p.pool.Query(ctx, "gold_innings", matchID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.InningsSummary])
}

func (p *Postgres) Batting(ctx context.Context, matchID int64) ([]model.BattingStat, error) {
	rows, err := p.pool.Query(ctx, "gold_batting", matchID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.BattingStat])
}

func (p *Postgres) Bowling(ctx context.Context, matchID int64) ([]model.BowlingStat, error) {
	rows, err := p.pool.Query(ctx, "gold_bowling", matchID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.BowlingStat])
}

func (p *Postgres) BattingLeaders(ctx context.Context, limit int) ([]model.BattingLeader, error) {
	rows, err := p.pool.Query(ctx, "gold_batting_leaders", limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.BattingLeader])
}

func (p *Postgres) BowlingLeaders(ctx context.Context, limit int) ([]model.BowlingLeader, error) {
	rows, err := p.pool.Query(ctx, "gold_bowling_leaders", limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[model.BowlingLeader])
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// sendBatch executes every queued statement and returns the rows affected.
func sendBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch) (int64, error) {
	if b.Len() == 0 {
		return 0, nil
	}
	br := tx.SendBatch(ctx, b)
	var affected int64
	for i := 0; i < b.Len(); i++ {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return affected, fmt.Errorf("batch statement %d: %w", i+1, err)
		}
		affected += tag.RowsAffected()
	}
	return affected, br.Close()
}

// nilEmpty returns nil for empty strings so SQL NULL is stored instead of "".
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nilZero stores an unknown innings ordinal as NULL.
func nilZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}
