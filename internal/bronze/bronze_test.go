package bronze

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/albapepper/scoracle-cricket/internal/store"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const blockOpen = `<div class="ds-text-tight-m ds-font-regular ds-flex ds-px-3 ds-py-2 lg:ds-px-4 lg:ds-py-[10px] ds-items-start ds-select-none lg:ds-select-auto">`

func block(ball, event, score, commentary, fallback string) string {
	return blockOpen +
		"<span>" + ball + "</span><span></span>" +
		"<span> " + event + " </span><span>" + score + "</span><span></span>" +
		"<p>" + commentary + "</p><p>" + fallback + "</p></div>"
}

func page(blocks ...string) string {
	return "<html><body><div class=\"feed\">" + strings.Join(blocks, "\n") + "</div></body></html>"
}

const scorecard = `<html><body>
<table class="ds-w-full ds-table ds-table-sm ds-table-auto"><tbody>
<tr><td><a>Wankhede Stadium, Mumbai</a></td></tr>
<tr><td>Toss</td><td>Chennai Super Kings, who chose to field</td></tr>
<tr><td>Series</td><td><a>Indian Premier League</a></td></tr>
<tr><td>Season</td><td>2025</td></tr>
<tr><td>Player Of The Match</td><td><span>Ruturaj</span> <span>Gaikwad</span></td></tr>
<tr><td>Umpires</td><td><a>Nitin Menon</a><a>Chris Gaffaney</a></td></tr>
<tr><td>Match days</td><td>23 March 2025 - night match (20-over match)</td></tr>
<tr><td>Hours of play (local time)</td><td>19.30 start</td></tr>
<tr><td>T20 debut</td><td>Vignesh Puthur</td></tr>
<tr><td>Something New</td><td>ignored</td></tr>
</tbody></table>
</body></html>`

func TestParseCommentary(t *testing.T) {
	html := page(
		block("0.1", "Khaleel to Rohit Sharma, FOUR", "4/0", "Driven through cover", ""),
		block("0.2", "Khaleel to Rohit Sharma, OUT", "4/1", "", "Caught at slip"),
	)
	rows, err := ParseCommentary(strings.NewReader(html), 7, "Mumbai Indians")
	if err != nil {
		t.Fatalf("ParseCommentary: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}

	r := rows[0]
	if r.MatchID != 7 || r.Seq != 0 || r.InningsLabel != "Mumbai Indians" {
		t.Errorf("identity = %d/%d/%q", r.MatchID, r.Seq, r.InningsLabel)
	}
	if r.Ball != "0.1" || r.EventText != "Khaleel to Rohit Sharma, FOUR" || r.ScoreText != "4/0" {
		t.Errorf("cells = %q/%q/%q", r.Ball, r.EventText, r.ScoreText)
	}
	if r.BowlerName != "Khaleel" || r.BatsmanName != "Rohit Sharma" {
		t.Errorf("players = %q/%q", r.BowlerName, r.BatsmanName)
	}
	if r.CommentaryText != "Driven through cover" {
		t.Errorf("commentary = %q", r.CommentaryText)
	}
	if rows[1].CommentaryText != "Caught at slip" {
		t.Errorf("fallback commentary = %q", rows[1].CommentaryText)
	}
}

func TestParseCommentary_NarrowPage(t *testing.T) {
	html := page(blockOpen + "<span>0.1</span><span>FOUR</span></div>")
	rows, err := ParseCommentary(strings.NewReader(html), 1, "A")
	if err != nil || len(rows) != 0 {
		t.Errorf("rows = %+v, err = %v", rows, err)
	}
}

func TestParseScorecard(t *testing.T) {
	md, err := ParseScorecard(strings.NewReader(scorecard), 42)
	if err != nil {
		t.Fatalf("ParseScorecard: %v", err)
	}
	tests := []struct {
		name, got, want string
	}{
		{"venue", md.Venue, "Wankhede Stadium, Mumbai"},
		{"toss", md.Toss, "Chennai Super Kings, who chose to field"},
		{"series", md.Series, "Indian Premier League"},
		{"season", md.Season, "2025"},
		{"potm", md.PlayerOfMatch, "Ruturaj Gaikwad"},
		{"umpires", md.Umpires, "Nitin Menon Chris Gaffaney"},
		{"days", md.MatchDays, "23 March 2025 - night match (20-over match)"},
		{"hours", md.HoursOfPlay, "19.30 start"},
		{"debut", md.Debuts, "Vignesh Puthur"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if md.MatchID != 42 {
		t.Errorf("MatchID = %d", md.MatchID)
	}
}

func TestParseScorecard_NoTable(t *testing.T) {
	md, err := ParseScorecard(strings.NewReader("<html><body><p>nothing</p></body></html>"), 3)
	if err != nil {
		t.Fatal(err)
	}
	if md.MatchID != 3 || md.Venue != "" || md.Toss != "" {
		t.Errorf("md = %+v", md)
	}
}

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := Match{
		MatchID:   42,
		Scorecard: write(t, dir, "scorecard.html", scorecard),
		First: InningsPage{Team: "Mumbai Indians", Path: write(t, dir, "mi.html", page(
			block("0.1", "Khaleel to Rohit Sharma, FOUR", "4/0", "x", ""),
			block("0.2", "Khaleel to Rohit Sharma, 1 run", "5/0", "y", ""),
		))},
		Second: InningsPage{Team: "Chennai Super Kings", Path: write(t, dir, "csk.html", page(
			block("0.1", "Boult to Gaikwad, no run", "0/0", "z", ""),
		))},
	}

	st := store.NewMemory()
	n, err := Import(ctx, st, m, testLogger)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d, want 3", n)
	}

	raws, _ := st.RawDeliveries(ctx, []int64{42})
	if len(raws) != 3 {
		t.Fatalf("stored %d deliveries, want 3", len(raws))
	}
	for i, r := range raws {
		if r.Seq != i {
			t.Errorf("row %d Seq = %d", i, r.Seq)
		}
	}
	if raws[2].InningsLabel != "Chennai Super Kings" {
		t.Errorf("second innings label = %q", raws[2].InningsLabel)
	}

	metas, _ := st.RawMetadata(ctx)
	if len(metas) != 1 || metas[0].FirstInnings != "Mumbai Indians" || metas[0].SecondInnings != "Chennai Super Kings" {
		t.Errorf("metadata = %+v", metas)
	}

	// Re-import replaces rather than duplicates.
	if _, err := Import(ctx, st, m, testLogger); err != nil {
		t.Fatal(err)
	}
	if raws, _ := st.RawDeliveries(ctx, []int64{42}); len(raws) != 3 {
		t.Errorf("after re-import %d deliveries, want 3", len(raws))
	}
}

func TestImport_MissingFile(t *testing.T) {
	m := Match{MatchID: 1, First: InningsPage{Team: "A", Path: filepath.Join(t.TempDir(), "nope.html")}}
	if _, err := Import(context.Background(), store.NewMemory(), m, testLogger); err == nil {
		t.Error("expected an error for a missing page")
	}
}
