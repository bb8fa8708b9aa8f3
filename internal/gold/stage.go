package gold

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/scoracle-cricket/internal/batch"
	"github.com/albapepper/scoracle-cricket/internal/model"
)

// Store is the persistence the silver -> gold stage needs.
type Store interface {
	MatchIDs(ctx context.Context) ([]int64, error)
	Metadata(ctx context.Context, matchID int64) (model.MatchMetadata, bool, error)
	Deliveries(ctx context.Context, matchID int64) ([]model.Delivery, error)
	WriteGold(ctx context.Context, set model.GoldSet, mode model.GoldWriteMode) error
}

// Publisher announces a match whose gold rows were just written.
type Publisher interface {
	PublishMatch(ctx context.Context, set model.GoldSet) error
}

// Options scopes a gold run.
type Options struct {
	// MatchIDs limits the run; empty processes every match in silver.
	MatchIDs []int64
	Workers  int
	Mode     model.GoldWriteMode
	// Publisher is optional.
	Publisher Publisher
}

// TransformToGold recomputes the aggregates of every selected match. A
// match without metadata or deliveries is skipped, and in replace mode its
// earlier gold rows are purged. A match missing an innings still gets its
// innings and player rows; only the match summary is skipped. A write
// failure halts the stage with earlier matches left committed.
func TransformToGold(ctx context.Context, st Store, opts Options, logger *slog.Logger) (*batch.Result, error) {
	result := batch.NewResult("gold")
	defer result.Finish()

	if opts.Mode == "" {
		opts.Mode = model.GoldReplace
	}

	ids := opts.MatchIDs
	if len(ids) == 0 {
		var err error
		if ids, err = st.MatchIDs(ctx); err != nil {
			return result, fmt.Errorf("list matches: %w", err)
		}
	}
	if len(ids) == 0 {
		logger.Warn("No silver matches to aggregate")
		return result, nil
	}
	logger.Info("Aggregating matches", "matches", len(ids), "mode", opts.Mode, "workers", opts.Workers)

	err := batch.ForEachMatch(ctx, ids, opts.Workers, func(ctx context.Context, matchID int64) error {
		md, ok, err := st.Metadata(ctx, matchID)
		if err != nil {
			return fmt.Errorf("read metadata %d: %w", matchID, err)
		}
		if !ok {
			skip(result, logger, matchID, "no silver metadata")
			return purge(ctx, st, result, matchID, opts.Mode)
		}

		rows, err := st.Deliveries(ctx, matchID)
		if err != nil {
			return fmt.Errorf("read deliveries %d: %w", matchID, err)
		}
		if len(rows) == 0 {
			skip(result, logger, matchID, "no deliveries")
			return purge(ctx, st, result, matchID, opts.Mode)
		}

		set, reason := Compute(md, rows)
		if reason != "" {
			result.Skip(matchID, "%s", reason)
			logger.Warn("Skipping match summary", "match_id", matchID, "reason", reason)
		}

		if err := st.WriteGold(ctx, set, opts.Mode); err != nil {
			return fmt.Errorf("write gold %d: %w", matchID, err)
		}
		result.Inc("matches", 1)
		result.Inc("innings", len(set.Innings))
		result.Inc("batting", len(set.Batting))
		result.Inc("bowling", len(set.Bowling))

		if set.Summary == nil {
			return nil
		}
		result.Inc("summaries", 1)
		if opts.Publisher != nil {
			if err := opts.Publisher.PublishMatch(ctx, set); err != nil {
				result.AddErrorf("publish %d: %v", matchID, err)
				logger.Warn("Publish failed", "match_id", matchID, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	logger.Info("Gold done", "summary", result.Summary())
	return result, nil
}

func skip(result *batch.Result, logger *slog.Logger, matchID int64, reason string) {
	result.Skip(matchID, "%s", reason)
	logger.Warn("Skipping match", "match_id", matchID, "reason", reason)
}

// purge drops a skipped match's earlier gold rows in replace mode.
func purge(ctx context.Context, st Store, result *batch.Result, matchID int64, mode model.GoldWriteMode) error {
	if mode != model.GoldReplace {
		return nil
	}
	if err := st.WriteGold(ctx, model.GoldSet{MatchID: matchID}, mode); err != nil {
		return fmt.Errorf("purge gold %d: %w", matchID, err)
	}
	result.Inc("purged", 1)
	return nil
}
