// Package listener consumes gold refresh events over Postgres LISTEN/NOTIFY.
// It holds a dedicated pgx connection (not from the pool) on the
// gold_refreshed channel and drops the API response cache on every event.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-cricket/internal/config"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// RefreshEvent is the JSON payload of pg_notify('gold_refreshed', ...).
type RefreshEvent struct {
	Matches   int   `json:"matches"`
	Timestamp int64 `json:"ts"`
}

// Purger drops cached responses. *cache.Cache satisfies it.
type Purger interface {
	Purge() int
}

// Start listens on config.GoldRefreshedChannel, reconnecting on connection
// loss. Blocks until ctx is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, p Purger, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, p, logger)
		if ctx.Err() != nil {
			logger.Info("Gold refresh listener stopped")
			return
		}

		logger.Error("Gold refresh listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

func listenLoop(ctx context.Context, dbURL string, p Purger, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+config.GoldRefreshedChannel); err != nil {
		return fmt.Errorf("LISTEN %s: %w", config.GoldRefreshedChannel, err)
	}
	logger.Info("Gold refresh listener connected", "channel", config.GoldRefreshedChannel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		handle(n.Payload, p, logger)
	}
}

// handle purges on every event; a malformed payload still purges.
func handle(payload string, p Purger, logger *slog.Logger) RefreshEvent {
	var ev RefreshEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		logger.Warn("Unparseable gold refresh payload", "payload", payload, "error", err)
	}
	dropped := p.Purge()
	logger.Info("Gold refreshed, cache purged", "matches", ev.Matches, "dropped", dropped)
	return ev
}
