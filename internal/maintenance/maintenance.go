// Package maintenance keeps the gold read models fresh. The leader views are
// refreshed after every gold run and, in the API service, on a ticker.
package maintenance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/scoracle-cricket/internal/config"
)

// Views lists the materialized views derived from gold, in refresh order.
var Views = []string{
	config.BattingLeadersView,
	config.BowlingLeadersView,
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RefreshMaterializedViews refreshes every gold view, stopping at the first
// failure. CONCURRENTLY needs each view's unique index.
func RefreshMaterializedViews(ctx context.Context, db Execer, logger *slog.Logger) error {
	for _, v := range Views {
		start := time.Now()
		_, err := db.Exec(ctx, fmt.Sprintf("REFRESH MATERIALIZED VIEW CONCURRENTLY %s", v))
		dur := time.Since(start).Round(time.Millisecond)

		if err != nil {
			logger.Warn("Failed to refresh materialized view",
				"view", v, "duration", dur, "error", err)
			return fmt.Errorf("refresh %s: %w", v, err)
		}
		logger.Info("Refreshed materialized view", "view", v, "duration", dur)
	}
	return nil
}

// NotifyGoldRefreshed signals listeners that a gold run committed matches.
func NotifyGoldRefreshed(ctx context.Context, db Execer, matches int) error {
	payload, err := json.Marshal(map[string]int64{"matches": int64(matches), "ts": time.Now().Unix()})
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", config.GoldRefreshedChannel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", config.GoldRefreshedChannel, err)
	}
	return nil
}

// Start refreshes the views every interval until ctx is cancelled. A zero
// interval disables the ticker. Intended to be called with `go`.
func Start(ctx context.Context, db Execer, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	logger.Info("View refresh ticker started", "interval", interval)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			// Failures are logged; the next tick retries.
			_ = RefreshMaterializedViews(ctx, db, logger)
		case <-ctx.Done():
			logger.Info("View refresh ticker stopped")
			return
		}
	}
}
