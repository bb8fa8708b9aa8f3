package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/albapepper/scoracle-cricket/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type recorder struct {
	mu     sync.Mutex
	sql    []string
	args   [][]any
	failOn string
}

func (r *recorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	if r.failOn != "" && strings.Contains(sql, r.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.NewCommandTag("REFRESH MATERIALIZED VIEW"), nil
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sql)
}

func TestRefreshMaterializedViews(t *testing.T) {
	r := &recorder{}
	if err := RefreshMaterializedViews(context.Background(), r, testLogger); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(r.sql) != len(Views) {
		t.Fatalf("statements = %v", r.sql)
	}
	for i, v := range Views {
		want := "REFRESH MATERIALIZED VIEW CONCURRENTLY " + v
		if r.sql[i] != want {
			t.Errorf("statement %d = %q, want %q", i, r.sql[i], want)
		}
	}
}

func TestRefreshMaterializedViews_StopsOnError(t *testing.T) {
	r := &recorder{failOn: Views[0]}
	err := RefreshMaterializedViews(context.Background(), r, testLogger)
	if err == nil || !strings.Contains(err.Error(), Views[0]) {
		t.Fatalf("err = %v", err)
	}
	if len(r.sql) != 1 {
		t.Errorf("ran %d statements after a failure, want 1", len(r.sql))
	}
}

func TestStart(t *testing.T) {
	r := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Start(ctx, r, 5*time.Millisecond, testLogger)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for r.calls() < len(Views) {
		select {
		case <-deadline:
			t.Fatal("ticker never refreshed")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestStart_Disabled(t *testing.T) {
	r := &recorder{}
	Start(context.Background(), r, 0, testLogger)
	if r.calls() != 0 {
		t.Error("zero interval still refreshed")
	}
}

func TestNotifyGoldRefreshed(t *testing.T) {
	r := &recorder{}
	if err := NotifyGoldRefreshed(context.Background(), r, 3); err != nil {
		t.Fatal(err)
	}
	if len(r.sql) != 1 || r.sql[0] != "SELECT pg_notify($1, $2)" {
		t.Fatalf("statements = %v", r.sql)
	}
	if r.args[0][0] != config.GoldRefreshedChannel {
		t.Errorf("channel = %v", r.args[0][0])
	}
	payload, _ := r.args[0][1].(string)
	if !strings.Contains(payload, `"matches":3`) {
		t.Errorf("payload = %q", payload)
	}
}
