package silver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albapepper/scoracle-cricket/internal/batch"
	"github.com/albapepper/scoracle-cricket/internal/metadata"
	"github.com/albapepper/scoracle-cricket/internal/model"
)

// MetadataStore is the persistence the metadata stage needs.
type MetadataStore interface {
	RawMetadata(ctx context.Context) ([]model.RawMatchMetadata, error)
	UpsertMetadata(ctx context.Context, md model.MatchMetadata) error
	InsertReplacements(ctx context.Context, rows []model.PlayerReplacement) (int, error)
}

// EventStore is the persistence the events stage needs.
type EventStore interface {
	RawDeliveries(ctx context.Context, matchIDs []int64) ([]model.RawDelivery, error)
	InningsTeams(ctx context.Context) (map[int64]model.InningsTeams, error)
	ReplaceDeliveries(ctx context.Context, matchID int64, rows []model.Delivery) error
}

// Store is everything the bronze -> silver stages touch.
type Store interface {
	MetadataStore
	EventStore
}

// EventsOptions scopes an events run.
type EventsOptions struct {
	// MatchIDs limits the reload; empty reloads every match in bronze.
	MatchIDs []int64
	// Workers is the number of matches processed concurrently.
	Workers int
}

// TransformMetadata normalizes every raw metadata record into silver. Each
// match is upserted so reruns converge; replacements are insert-if-absent.
func TransformMetadata(ctx context.Context, st MetadataStore, logger *slog.Logger) (*batch.Result, error) {
	result := batch.NewResult("silver_metadata")
	defer result.Finish()

	raws, err := st.RawMetadata(ctx)
	if err != nil {
		return result, fmt.Errorf("read raw metadata: %w", err)
	}
	if len(raws) == 0 {
		logger.Warn("No raw metadata to transform")
		return result, nil
	}
	logger.Info("Transforming match metadata", "matches", len(raws))

	for _, raw := range raws {
		md, repl, unparsed := metadata.Normalize(raw)
		if err := metadata.Validate(md); err != nil {
			result.Skip(md.MatchID, "%v", err)
			logger.Warn("Skipping match metadata", "match_id", md.MatchID, "reason", err)
			continue
		}
		if unparsed {
			result.Inc("replacements_unparsed", 1)
			logger.Warn("Player replacements not in JSON form, ignored", "match_id", md.MatchID)
		}

		if err := st.UpsertMetadata(ctx, md); err != nil {
			return result, fmt.Errorf("upsert metadata %d: %w", md.MatchID, err)
		}
		result.Inc("matches", 1)

		if len(repl) == 0 {
			continue
		}
		inserted, err := st.InsertReplacements(ctx, repl)
		if err != nil {
			return result, fmt.Errorf("insert replacements %d: %w", md.MatchID, err)
		}
		result.Inc("replacements", inserted)
		result.Inc("replacements_existing", len(repl)-inserted)
	}

	logger.Info("Match metadata done", "summary", result.Summary())
	return result, nil
}

// TransformEvents rebuilds the canonical deliveries for every match in the
// bronze event stream. A match is replaced wholesale, never patched.
func TransformEvents(ctx context.Context, st EventStore, opts EventsOptions, logger *slog.Logger) (*batch.Result, error) {
	result := batch.NewResult("silver_events")
	defer result.Finish()

	teams, err := st.InningsTeams(ctx)
	if err != nil {
		return result, fmt.Errorf("read innings teams: %w", err)
	}
	raws, err := st.RawDeliveries(ctx, opts.MatchIDs)
	if err != nil {
		return result, fmt.Errorf("read raw deliveries: %w", err)
	}
	if len(raws) == 0 {
		logger.Warn("No raw deliveries to transform", "match_filter", len(opts.MatchIDs))
		return result, nil
	}

	order, byMatch := GroupByMatch(raws)
	logger.Info("Transforming deliveries", "matches", len(order), "rows", len(raws), "workers", opts.Workers)

	err = batch.ForEachMatch(ctx, order, opts.Workers, func(ctx context.Context, matchID int64) error {
		mapping, ok := teams[matchID]
		if !ok {
			result.Skip(matchID, "no silver metadata")
			logger.Warn("Skipping deliveries", "match_id", matchID, "reason", "no silver metadata")
			return nil
		}

		rows := BuildDeliveries(byMatch[matchID], mapping)
		if err := st.ReplaceDeliveries(ctx, matchID, rows); err != nil {
			return fmt.Errorf("replace deliveries %d: %w", matchID, err)
		}

		tally(result, rows)
		result.Inc("matches", 1)
		return nil
	})
	if err != nil {
		return result, err
	}

	logger.Info("Deliveries done",
		"balls", result.Count("deliveries"),
		"wickets", result.Count("wickets"),
		"runs", result.Count("runs"),
		"unknown_innings", result.Count("unknown_innings"),
		"summary", result.Summary(),
	)
	return result, nil
}

// tally feeds the verification counters logged after the stage.
func tally(result *batch.Result, rows []model.Delivery) {
	var wickets, runs, unknown int
	for _, d := range rows {
		if d.IsWicket {
			wickets++
		}
		runs += d.RunsConceded()
		if d.InningsNumber == model.InningsUnknown {
			unknown++
		}
	}
	result.Inc("deliveries", len(rows))
	result.Inc("wickets", wickets)
	result.Inc("runs", runs)
	result.Inc("unknown_innings", unknown)
}
