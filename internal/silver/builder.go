// Package silver runs the bronze -> silver stage: normalizing match metadata
// and turning scraped commentary rows into canonical deliveries.
package silver

import (
	"strings"

	"github.com/albapepper/scoracle-cricket/internal/model"
	"github.com/albapepper/scoracle-cricket/internal/parse"
)

// BuildDelivery converts one scraped row into its canonical record. It never
// fails: fields the parsers cannot recover are left nil or zero.
func BuildDelivery(raw model.RawDelivery, teams model.InningsTeams) model.Delivery {
	d := model.Delivery{
		MatchID:       raw.MatchID,
		Seq:           raw.Seq,
		BallNotation:  strings.TrimSpace(raw.Ball),
		Bowler:        strings.TrimSpace(raw.BowlerName),
		Batsman:       strings.TrimSpace(raw.BatsmanName),
		InningsTeam:   raw.InningsLabel,
		InningsNumber: teams.Number(raw.InningsLabel),
		RawEvent:      raw.EventText,
		Commentary:    raw.CommentaryText,
	}

	if n, ok := parse.BallNotation(raw.Ball); ok {
		d.OverNumber = intPtr(n.Over)
		d.BallNumber = intPtr(n.Ball)
		d.BallInOver = intPtr(n.BallInOver)
	}

	runs := parse.EventRuns(raw.EventText)
	d.RunsScored = runs.Scored
	d.Extras = runs.Extras
	d.ExtraType = runs.ExtraType
	if d.ExtraType == model.ExtraNone {
		d.Extras = 0
	}

	if w := parse.EventWicket(raw.EventText); w.IsWicket {
		d.IsWicket = true
		d.WicketType = w.Type
		d.Fielder = w.Fielder
	}

	if s, ok := parse.ScoreSnapshot(raw.ScoreText); ok {
		d.TotalRuns = intPtr(s.Runs)
		d.TotalWickets = intPtr(s.Wickets)
	}

	// Older scrapes left bowler/batsman blank; recover them from the event line.
	if d.Bowler == "" || d.Batsman == "" {
		bowler, batsman := parse.BowlerBatsman(raw.EventText)
		if d.Bowler == "" {
			d.Bowler = bowler
		}
		if d.Batsman == "" {
			d.Batsman = batsman
		}
	}
	return d
}

// BuildDeliveries converts a match's scraped rows in capture order. Every
// input row yields exactly one output row.
func BuildDeliveries(raws []model.RawDelivery, teams model.InningsTeams) []model.Delivery {
	out := make([]model.Delivery, len(raws))
	for i, raw := range raws {
		out[i] = BuildDelivery(raw, teams)
	}
	return out
}

// GroupByMatch splits a combined stream into per-match slices, preserving the
// order of first appearance and the row order within each match.
func GroupByMatch(raws []model.RawDelivery) (order []int64, byMatch map[int64][]model.RawDelivery) {
	byMatch = make(map[int64][]model.RawDelivery)
	for _, raw := range raws {
		if _, seen := byMatch[raw.MatchID]; !seen {
			order = append(order, raw.MatchID)
		}
		byMatch[raw.MatchID] = append(byMatch[raw.MatchID], raw)
	}
	return order, byMatch
}

func intPtr(n int) *int { return &n }
