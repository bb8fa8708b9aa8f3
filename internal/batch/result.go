// Package batch provides stage result accounting and the per-match worker
// pool shared by the silver and gold stages.
package batch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Skip records a match excluded from a stage's output and why.
type Skip struct {
	MatchID int64
	Reason  string
}

// Result tracks counts, skips and errors from one stage run. It is safe for
// concurrent use by the worker pool.
type Result struct {
	Stage string

	mu       sync.Mutex
	counts   map[string]int
	skipped  []Skip
	errors   []string
	started  time.Time
	Duration time.Duration
}

// NewResult starts timing a stage.
func NewResult(stage string) *Result {
	return &Result{Stage: stage, counts: make(map[string]int), started: time.Now()}
}

// Inc adds n to a named counter ("matches", "deliveries", ...).
func (r *Result) Inc(name string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name] += n
}

// Count returns a named counter.
func (r *Result) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// Skip records a structural skip for one match.
func (r *Result) Skip(matchID int64, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, Skip{MatchID: matchID, Reason: fmt.Sprintf(format, args...)})
}

// Skipped returns the recorded skips ordered by match.
func (r *Result) Skipped() []Skip {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]Skip(nil), r.skipped...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MatchID < out[j].MatchID })
	return out
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

// Errors returns the recorded error messages.
func (r *Result) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

// Finish stamps the stage duration.
func (r *Result) Finish() {
	r.Duration = time.Since(r.started)
}

// Summary returns a human-readable one-line summary.
func (r *Result) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.counts))
	for name := range r.counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("stage=")
	b.WriteString(r.Stage)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%d", name, r.counts[name])
	}
	fmt.Fprintf(&b, " skipped=%d errors=%d dur=%s",
		len(r.skipped), len(r.errors), r.Duration.Round(time.Millisecond))
	return b.String()
}
