package store

import (
	"context"
	"testing"
	"time"

	"github.com/albapepper/scoracle-cricket/internal/model"
)

func goldSet(matchID int64, runs int) model.GoldSet {
	return model.GoldSet{
		MatchID: matchID,
		Summary: &model.MatchSummary{MatchID: matchID, TotalRuns: runs},
		Innings: []model.InningsSummary{{MatchID: matchID, InningsNumber: 1, Team: "A", TotalRuns: runs}},
		Batting: []model.BattingStat{{MatchID: matchID, PlayerName: "Kohli", Team: "A", RunsScored: runs}},
		Bowling: []model.BowlingStat{{MatchID: matchID, PlayerName: "Bumrah", Team: "B", WicketsTaken: 1}},
	}
}

func TestWriteGold_Modes(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mode        model.GoldWriteMode
		wantSummary int
		wantBatting int
	}{
		{"replace rewrites every table", model.GoldReplace, 200, 200},
		{"insert-missing keeps player rows", model.GoldInsertMissing, 200, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			if err := m.WriteGold(ctx, goldSet(1, 150), model.GoldReplace); err != nil {
				t.Fatal(err)
			}
			if err := m.WriteGold(ctx, goldSet(1, 200), tt.mode); err != nil {
				t.Fatal(err)
			}

			s, ok, _ := m.MatchSummary(ctx, 1)
			if !ok || s.TotalRuns != tt.wantSummary {
				t.Errorf("summary runs = %d (found %v), want %d", s.TotalRuns, ok, tt.wantSummary)
			}
			batting, _ := m.Batting(ctx, 1)
			if len(batting) != 1 || batting[0].RunsScored != tt.wantBatting {
				t.Errorf("batting = %+v, want one row with %d runs", batting, tt.wantBatting)
			}
			innings, _ := m.Innings(ctx, 1)
			if len(innings) != 1 {
				t.Errorf("innings rows = %d, want 1", len(innings))
			}
		})
	}
}

func TestMatches_Order(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	day := func(d int) *time.Time {
		ts := time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	for _, s := range []model.MatchSummary{
		{MatchID: 1, MatchDate: day(1)},
		{MatchID: 2},
		{MatchID: 3, MatchDate: day(5)},
		{MatchID: 4, MatchDate: day(5)},
	} {
		s := s
		if err := m.WriteGold(ctx, model.GoldSet{MatchID: s.MatchID, Summary: &s}, model.GoldReplace); err != nil {
			t.Fatal(err)
		}
	}

	got, _ := m.Matches(ctx, 0, 0)
	want := []int64{4, 3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %d matches, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].MatchID != id {
			t.Errorf("position %d = match %d, want %d", i, got[i].MatchID, id)
		}
	}

	paged, _ := m.Matches(ctx, 2, 1)
	if len(paged) != 2 || paged[0].MatchID != 3 || paged[1].MatchID != 1 {
		t.Errorf("limit 2 offset 1 = %+v", paged)
	}
	if beyond, _ := m.Matches(ctx, 10, 10); beyond != nil {
		t.Errorf("offset past the end = %+v, want nil", beyond)
	}
}

func TestLeaders(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	sets := []model.GoldSet{
		{
			MatchID: 1,
			Batting: []model.BattingStat{
				{PlayerName: "Kohli", Team: "RCB", RunsScored: 101, BallsFaced: 60, Fours: 10, IsFifty: true, IsCentury: true},
				{PlayerName: "Rohit", Team: "MI", RunsScored: 40, BallsFaced: 30},
			},
			Bowling: []model.BowlingStat{
				{PlayerName: "Bumrah", Team: "MI", BallsBowled: 24, RunsConceded: 18, WicketsTaken: 3},
				{PlayerName: "Chahal", Team: "RR", BallsBowled: 24, RunsConceded: 30, WicketsTaken: 3},
			},
		},
		{
			MatchID: 2,
			Batting: []model.BattingStat{
				{PlayerName: "Kohli", Team: "RCB", RunsScored: 55, BallsFaced: 40, Sixes: 2, IsFifty: true},
			},
			Bowling: []model.BowlingStat{
				{PlayerName: "Chahal", Team: "RR", BallsBowled: 24, RunsConceded: 20, WicketsTaken: 2},
			},
		},
	}
	for _, s := range sets {
		if err := m.WriteGold(ctx, s, model.GoldReplace); err != nil {
			t.Fatal(err)
		}
	}

	bat, _ := m.BattingLeaders(ctx, 10)
	if len(bat) != 2 || bat[0].PlayerName != "Kohli" {
		t.Fatalf("batting leaders = %+v", bat)
	}
	k := bat[0]
	if k.Matches != 2 || k.Runs != 156 || k.BallsFaced != 100 || k.HighScore != 101 {
		t.Errorf("kohli = %+v", k)
	}
	if k.Centuries != 1 || k.Fifties != 1 {
		t.Errorf("a century must not also count as a fifty: %+v", k)
	}
	if k.StrikeRate != 156 {
		t.Errorf("strike rate = %v, want 156", k.StrikeRate)
	}

	bowl, _ := m.BowlingLeaders(ctx, 1)
	if len(bowl) != 1 {
		t.Fatalf("limit ignored: %+v", bowl)
	}
	if bowl[0].PlayerName != "Chahal" || bowl[0].Wickets != 5 || bowl[0].EconomyRate != 6.25 {
		t.Errorf("top bowler = %+v", bowl[0])
	}

	all, _ := m.BowlingLeaders(ctx, 0)
	if len(all) != 2 || all[1].PlayerName != "Bumrah" || all[1].EconomyRate != 4.5 {
		t.Errorf("bowling leaders = %+v", all)
	}
}

func TestDeliveries_Order(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	ball := func(n int) *int { return &n }

	rows := []model.Delivery{
		{Seq: 0, BallNumber: ball(2)},
		{Seq: 1},
		{Seq: 2, BallNumber: ball(1)},
		{Seq: 3, BallNumber: ball(1)},
	}
	if err := m.ReplaceDeliveries(ctx, 7, rows); err != nil {
		t.Fatal(err)
	}
	got, _ := m.Deliveries(ctx, 7)
	want := []int{2, 3, 0, 1}
	for i, seq := range want {
		if got[i].Seq != seq {
			t.Errorf("position %d = seq %d, want %d", i, got[i].Seq, seq)
		}
	}
}

func TestDeliveries_InningsFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	ball := func(n int) *int { return &n }

	rows := []model.Delivery{
		{Seq: 0, InningsNumber: model.InningsFirst, BallNumber: ball(1)},
		{Seq: 1, InningsNumber: model.InningsFirst, BallNumber: ball(2)},
		{Seq: 2, InningsNumber: model.InningsSecond, BallNumber: ball(1)},
		{Seq: 3, InningsNumber: model.InningsUnknown, BallNumber: ball(1)},
		{Seq: 4, InningsNumber: model.InningsSecond, BallNumber: ball(2)},
	}
	if err := m.ReplaceDeliveries(ctx, 8, rows); err != nil {
		t.Fatal(err)
	}
	got, _ := m.Deliveries(ctx, 8)
	want := []int{0, 1, 2, 4, 3}
	for i, seq := range want {
		if got[i].Seq != seq {
			t.Errorf("position %d = seq %d, want %d", i, got[i].Seq, seq)
		}
	}
}
