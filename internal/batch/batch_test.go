package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestForEachMatch_Sequential(t *testing.T) {
	var got []int64
	err := ForEachMatch(context.Background(), []int64{3, 1, 2}, 1, func(_ context.Context, id int64) error {
		got = append(got, id)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachMatch: %v", err)
	}
	if len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Errorf("order = %v, want [3 1 2]", got)
	}
}

func TestForEachMatch_ParallelVisitsAll(t *testing.T) {
	ids := make([]int64, 50)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	var mu sync.Mutex
	seen := map[int64]bool{}
	err := ForEachMatch(context.Background(), ids, 4, func(_ context.Context, id int64) error {
		mu.Lock()
		seen[id] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachMatch: %v", err)
	}
	if len(seen) != len(ids) {
		t.Errorf("visited %d matches, want %d", len(seen), len(ids))
	}
}

func TestForEachMatch_StopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	err := ForEachMatch(context.Background(), []int64{1, 2, 3, 4}, 1, func(_ context.Context, id int64) error {
		calls.Add(1)
		if id == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestForEachMatch_Empty(t *testing.T) {
	if err := ForEachMatch(context.Background(), nil, 4, nil); err != nil {
		t.Errorf("ForEachMatch(nil) = %v", err)
	}
}

func TestResultSummary(t *testing.T) {
	r := NewResult("gold")
	r.Inc("matches", 2)
	r.Inc("matches", 1)
	r.Inc("batting", 22)
	r.Skip(9, "missing innings %d", 2)
	r.AddErrorf("write %d: %s", 9, "boom")
	r.Finish()

	s := r.Summary()
	for _, want := range []string{"stage=gold", "batting=22", "matches=3", "skipped=1", "errors=1"} {
		if !strings.Contains(s, want) {
			t.Errorf("Summary() = %q, missing %q", s, want)
		}
	}
	if skips := r.Skipped(); len(skips) != 1 || skips[0].Reason != "missing innings 2" {
		t.Errorf("Skipped() = %+v", skips)
	}
}
