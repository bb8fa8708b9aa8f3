package silver

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/albapepper/scoracle-cricket/internal/model"
	"github.com/albapepper/scoracle-cricket/internal/store"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var teams = model.InningsTeams{First: "Mumbai Indians", Second: "Chennai Super Kings"}

func raw(seq int, innings, ballText, event, score string) model.RawDelivery {
	return model.RawDelivery{
		MatchID:      1,
		Seq:          seq,
		InningsLabel: innings,
		Ball:         ballText,
		EventText:    event,
		ScoreText:    score,
	}
}

func TestBuildDelivery(t *testing.T) {
	r := raw(3, "Mumbai Indians", "5.6", "Jadeja to Rohit Sharma, no ball, 1 run", "45/2")
	d := BuildDelivery(r, teams)

	if d.OverNumber == nil || *d.OverNumber != 5 || *d.BallInOver != 6 || *d.BallNumber != 36 {
		t.Errorf("notation = %v/%v/%v", d.OverNumber, d.BallInOver, d.BallNumber)
	}
	if d.RunsScored != 1 || d.Extras != 1 || d.ExtraType != model.ExtraNoBall {
		t.Errorf("runs = %d/%d/%q", d.RunsScored, d.Extras, d.ExtraType)
	}
	if d.TotalRuns == nil || *d.TotalRuns != 45 || *d.TotalWickets != 2 {
		t.Errorf("snapshot = %v/%v", d.TotalRuns, d.TotalWickets)
	}
	if d.InningsNumber != model.InningsFirst {
		t.Errorf("InningsNumber = %d, want 1", d.InningsNumber)
	}
	if d.Bowler != "Jadeja" || d.Batsman != "Rohit Sharma" {
		t.Errorf("players = %q/%q", d.Bowler, d.Batsman)
	}
	if d.IsWicket || d.WicketType != model.WicketNone || d.Fielder != "" {
		t.Errorf("wicket = %v/%q/%q", d.IsWicket, d.WicketType, d.Fielder)
	}
	if d.Seq != 3 || d.RawEvent != r.EventText {
		t.Errorf("passthrough = %d/%q", d.Seq, d.RawEvent)
	}
}

func TestBuildDelivery_Degrades(t *testing.T) {
	r := raw(0, "Mumbai", "garbage", "", "n/a")
	r.BowlerName = " Bumrah "
	d := BuildDelivery(r, teams)
	if d.OverNumber != nil || d.BallNumber != nil || d.BallInOver != nil {
		t.Error("malformed notation produced indices")
	}
	if d.TotalRuns != nil || d.TotalWickets != nil {
		t.Error("malformed score produced a snapshot")
	}
	if d.InningsNumber != model.InningsUnknown || d.InningsTeam != "Mumbai" {
		t.Errorf("innings = %d/%q", d.InningsNumber, d.InningsTeam)
	}
	if d.Bowler != "Bumrah" {
		t.Errorf("Bowler = %q", d.Bowler)
	}
	if d.RunsScored != 0 || d.Extras != 0 || d.ExtraType != model.ExtraNone || d.IsWicket {
		t.Errorf("empty event = %+v", d)
	}
}

func TestBuildDelivery_Wicket(t *testing.T) {
	d := BuildDelivery(raw(0, "Chennai Super Kings", "10.2", "Bumrah to Dube, OUT! Caught by Tilak", "88/4"), teams)
	if !d.IsWicket || d.WicketType != model.WicketCaught || d.Fielder != "Tilak" {
		t.Errorf("wicket = %v/%q/%q", d.IsWicket, d.WicketType, d.Fielder)
	}
	if d.InningsNumber != model.InningsSecond {
		t.Errorf("InningsNumber = %d, want 2", d.InningsNumber)
	}
}

func TestBuildDeliveries_OneToOne(t *testing.T) {
	raws := []model.RawDelivery{
		raw(0, "Mumbai Indians", "0.1", "FOUR", "4/0"),
		raw(1, "", "", "", ""),
		raw(2, "Somebody Else", "x", "???", "?"),
	}
	got := BuildDeliveries(raws, teams)
	if len(got) != len(raws) {
		t.Fatalf("len = %d, want %d", len(got), len(raws))
	}
	for i, d := range got {
		if d.Seq != raws[i].Seq {
			t.Errorf("row %d Seq = %d", i, d.Seq)
		}
	}
}

func TestGroupByMatch(t *testing.T) {
	raws := []model.RawDelivery{{MatchID: 5, Seq: 0}, {MatchID: 3, Seq: 0}, {MatchID: 5, Seq: 1}}
	order, by := GroupByMatch(raws)
	if !reflect.DeepEqual(order, []int64{5, 3}) {
		t.Errorf("order = %v", order)
	}
	if len(by[5]) != 2 || by[5][1].Seq != 1 {
		t.Errorf("by[5] = %+v", by[5])
	}
}

// --------------------------------------------------------------------------
// Stages
// --------------------------------------------------------------------------

func seedBronze(t *testing.T, st *store.Memory) {
	t.Helper()
	ctx := context.Background()
	md := model.RawMatchMetadata{
		MatchID:            1,
		Toss:               "Chennai Super Kings, who chose to field",
		Umpires:            "Nitin Menon, Chris Gaffaney",
		MatchDays:          "23 March 2025 - night match",
		FirstInnings:       teams.First,
		SecondInnings:      teams.Second,
		PlayerReplacements: `[{"out": "Rohit Sharma", "in": "Vignesh Puthur", "team": "Mumbai Indians", "type": "impact player"}]`,
	}
	if err := st.InsertRawMetadata(ctx, md); err != nil {
		t.Fatal(err)
	}
	rows := []model.RawDelivery{
		raw(0, teams.First, "0.1", "Khaleel to Rohit Sharma, FOUR", "4/0"),
		raw(1, teams.First, "0.2", "Khaleel to Rohit Sharma, OUT! Caught by Dube", "4/1"),
		raw(2, teams.Second, "0.1", "Boult to Gaikwad, 2 wides", "2/0"),
		raw(3, "Unknown XI", "0.2", "Boult to Gaikwad, 1 run", "3/0"),
	}
	if err := st.InsertRawDeliveries(ctx, 1, rows); err != nil {
		t.Fatal(err)
	}
	// Match 2 has deliveries but no metadata.
	if err := st.InsertRawDeliveries(ctx, 2, []model.RawDelivery{{MatchID: 2, Ball: "0.1", EventText: "1 run"}}); err != nil {
		t.Fatal(err)
	}
}

func TestTransformMetadata(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedBronze(t, st)

	res, err := TransformMetadata(ctx, st, testLogger)
	if err != nil {
		t.Fatalf("TransformMetadata: %v", err)
	}
	if res.Count("matches") != 1 || res.Count("replacements") != 1 {
		t.Errorf("summary = %s", res.Summary())
	}
	md, ok, _ := st.Metadata(ctx, 1)
	if !ok || md.TossWinner != teams.Second || md.TossDecision != "field" || md.Umpire2 != "Chris Gaffaney" {
		t.Errorf("metadata = %+v", md)
	}

	// Rerun converges: metadata upserted, replacement skipped as existing.
	res, err = TransformMetadata(ctx, st, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count("replacements") != 0 || res.Count("replacements_existing") != 1 {
		t.Errorf("rerun summary = %s", res.Summary())
	}
	if n := len(st.Replacements()); n != 1 {
		t.Errorf("replacements stored = %d, want 1", n)
	}
	again, _, _ := st.Metadata(ctx, 1)
	if !reflect.DeepEqual(md, again) {
		t.Errorf("rerun changed metadata: %+v vs %+v", md, again)
	}
}

func TestTransformMetadata_SkipsSameTeams(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	_ = st.InsertRawMetadata(ctx, model.RawMatchMetadata{MatchID: 4, FirstInnings: "A", SecondInnings: "A"})

	res, err := TransformMetadata(ctx, st, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped()) != 1 || res.Count("matches") != 0 {
		t.Errorf("summary = %s", res.Summary())
	}
	if _, ok, _ := st.Metadata(ctx, 4); ok {
		t.Error("invalid metadata was stored")
	}
}

func TestTransformEvents(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedBronze(t, st)
	if _, err := TransformMetadata(ctx, st, testLogger); err != nil {
		t.Fatal(err)
	}

	res, err := TransformEvents(ctx, st, EventsOptions{}, testLogger)
	if err != nil {
		t.Fatalf("TransformEvents: %v", err)
	}
	if res.Count("matches") != 1 || res.Count("deliveries") != 4 {
		t.Errorf("summary = %s", res.Summary())
	}
	if res.Count("wickets") != 1 || res.Count("runs") != 7 || res.Count("unknown_innings") != 1 {
		t.Errorf("verification = %s", res.Summary())
	}
	skips := res.Skipped()
	if len(skips) != 1 || skips[0].MatchID != 2 {
		t.Errorf("skipped = %+v", skips)
	}

	rows, _ := st.Deliveries(ctx, 1)
	if len(rows) != 4 {
		t.Fatalf("stored %d deliveries, want 4", len(rows))
	}
	var unknown int
	for _, d := range rows {
		if d.InningsNumber == model.InningsUnknown {
			unknown++
		}
	}
	if unknown != 1 {
		t.Errorf("unknown-innings rows = %d, want 1", unknown)
	}
}

func TestTransformEvents_Idempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedBronze(t, st)
	if _, err := TransformMetadata(ctx, st, testLogger); err != nil {
		t.Fatal(err)
	}

	opts := EventsOptions{MatchIDs: []int64{1}, Workers: 2}
	if _, err := TransformEvents(ctx, st, opts, testLogger); err != nil {
		t.Fatal(err)
	}
	first, _ := st.Deliveries(ctx, 1)
	if _, err := TransformEvents(ctx, st, opts, testLogger); err != nil {
		t.Fatal(err)
	}
	second, _ := st.Deliveries(ctx, 1)
	if !reflect.DeepEqual(first, second) {
		t.Error("reloading the same bronze batch changed the silver rows")
	}
}

func TestTransformEvents_Empty(t *testing.T) {
	res, err := TransformEvents(context.Background(), store.NewMemory(), EventsOptions{}, testLogger)
	if err != nil || res.Count("matches") != 0 {
		t.Errorf("empty run = %s, %v", res.Summary(), err)
	}
}
