package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/albapepper/scoracle-cricket/internal/model"
)

func TestStreamValues(t *testing.T) {
	at := time.Date(2025, 3, 23, 22, 0, 0, 0, time.UTC)
	set := model.GoldSet{
		MatchID: 9,
		Summary: &model.MatchSummary{MatchID: 9, Winner: "Chennai Super Kings", Margin: "by 4 wickets"},
		Innings: []model.InningsSummary{
			{MatchID: 9, InningsNumber: 1, Team: "Mumbai Indians", FinalScore: 155},
			{MatchID: 9, InningsNumber: 2, Team: "Chennai Super Kings", FinalScore: 158},
		},
	}

	values, err := streamValues(set, at)
	if err != nil {
		t.Fatalf("streamValues: %v", err)
	}
	if values["timestamp"] != at.Unix() {
		t.Errorf("timestamp = %v", values["timestamp"])
	}

	var ev MatchEvent
	if err := json.Unmarshal([]byte(values["data"].(string)), &ev); err != nil {
		t.Fatalf("data is not JSON: %v", err)
	}
	if ev.MatchID != 9 || ev.Winner != "Chennai Super Kings" || ev.Margin != "by 4 wickets" {
		t.Errorf("event = %+v", ev)
	}
	if len(ev.Innings) != 2 || ev.Innings[1].FinalScore != 158 {
		t.Errorf("innings = %+v", ev.Innings)
	}
}

func TestStreamValues_NoSummary(t *testing.T) {
	values, err := streamValues(model.GoldSet{MatchID: 3}, time.Unix(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(values["data"].(string)), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["winner"] != "" {
		t.Errorf("winner = %v", raw["winner"])
	}
	if inn, ok := raw["innings"].([]any); !ok || len(inn) != 0 {
		t.Errorf("innings = %v, want empty array", raw["innings"])
	}
}
