// Package gold derives the analytics tables from canonical deliveries:
// innings summaries, per-player batting and bowling lines, and match results.
//
// The aggregation functions are pure; TransformToGold is the batch driver
// that reads silver rows and writes the aggregates per match.
package gold

import (
	"fmt"

	"github.com/albapepper/scoracle-cricket/internal/model"
	"github.com/albapepper/scoracle-cricket/internal/parse"
)

// PowerplayOvers is the fixed opening window, regardless of match format.
const PowerplayOvers = 6

// WicketsPerInnings bounds the wickets-in-hand margin.
const WicketsPerInnings = 10

// --------------------------------------------------------------------------
// Innings
// --------------------------------------------------------------------------

// InningsSummary aggregates the deliveries of one innings. rows must all
// belong to that innings.
func InningsSummary(matchID int64, innings int, team string, rows []model.Delivery) model.InningsSummary {
	s := model.InningsSummary{
		MatchID:       matchID,
		InningsNumber: innings,
		Team:          team,
		TotalBalls:    len(rows),
	}

	maxRuns, maxWickets := -1, -1
	wicketRows := 0
	for _, d := range rows {
		s.TotalRuns += d.RunsConceded()
		s.TotalExtras += d.Extras

		switch {
		case d.RunsScored == 4:
			s.Boundaries++
		case d.RunsScored == 6:
			s.Sixes++
		case d.RunsScored == 1:
			s.Singles++
		case d.RunsScored == 2:
			s.Twos++
		case d.RunsScored == 0 && d.Extras == 0:
			s.Dots++
		}

		switch d.ExtraType {
		case model.ExtraWide:
			s.Wides += d.Extras
		case model.ExtraNoBall:
			s.NoBalls += d.Extras
		case model.ExtraBye:
			s.Byes += d.Extras
		case model.ExtraLegBye:
			s.LegByes += d.Extras
		}

		if d.IsWicket {
			wicketRows++
		}
		if d.OverNumber != nil && *d.OverNumber < PowerplayOvers {
			s.PowerplayRuns += d.RunsConceded()
			if d.IsWicket {
				s.PowerplayWickets++
			}
		}
		if d.TotalRuns != nil && *d.TotalRuns > maxRuns {
			maxRuns = *d.TotalRuns
		}
		if d.TotalWickets != nil && *d.TotalWickets > maxWickets {
			maxWickets = *d.TotalWickets
		}
	}

	// The scoreboard snapshot wins over the per-ball sum when present.
	s.FinalScore = s.TotalRuns
	if maxRuns >= 0 {
		s.FinalScore = maxRuns
	}
	s.TotalWickets = wicketRows
	if maxWickets >= 0 {
		s.TotalWickets = maxWickets
	}

	s.TotalOvers = parse.Overs(s.TotalBalls)
	s.RunRate = parse.PerBalls(s.FinalScore, s.TotalBalls, parse.BallsPerOver)
	return s
}

// --------------------------------------------------------------------------
// Batting
// --------------------------------------------------------------------------

type playerKey struct {
	name string
	team string
}

// BattingStats builds one line per (batsman, batting side) in order of
// first appearance. Rows without a batsman are ignored.
func BattingStats(matchID int64, rows []model.Delivery) []model.BattingStat {
	var order []playerKey
	stats := make(map[playerKey]*model.BattingStat)
	dismissal := make(map[string]model.WicketType)

	for _, d := range rows {
		if d.Batsman == "" {
			continue
		}
		k := playerKey{d.Batsman, d.InningsTeam}
		b := stats[k]
		if b == nil {
			b = &model.BattingStat{MatchID: matchID, PlayerName: d.Batsman, Team: d.InningsTeam}
			stats[k] = b
			order = append(order, k)
		}
		b.BallsFaced++
		b.RunsScored += d.RunsScored
		switch d.RunsScored {
		case 4:
			b.Fours++
		case 6:
			b.Sixes++
		}
		if d.IsWicket {
			b.IsOut = true
			if _, seen := dismissal[d.Batsman]; !seen {
				dismissal[d.Batsman] = d.WicketType
			}
		}
	}

	out := make([]model.BattingStat, 0, len(order))
	for _, k := range order {
		b := stats[k]
		b.StrikeRate = parse.PerBalls(b.RunsScored, b.BallsFaced, 100)
		if b.IsOut {
			b.DismissalType = dismissal[b.PlayerName]
		}
		b.IsFifty = b.RunsScored >= 50
		b.IsCentury = b.RunsScored >= 100
		out = append(out, *b)
	}
	return out
}

// --------------------------------------------------------------------------
// Bowling
// --------------------------------------------------------------------------

type overKey struct {
	innings int
	over    int
}

type overTally struct {
	balls    int
	conceded int
}

// BowlingStats builds one line per (bowler, fielding side) in order of first
// appearance. The fielding side is the opponent of each delivery's innings
// under the match's innings mapping; a delivery of unknown innings is
// credited to the side the bowler fielded for elsewhere in the match. Rows
// without a bowler are ignored.
func BowlingStats(matchID int64, teams model.InningsTeams, rows []model.Delivery) []model.BowlingStat {
	var order []playerKey
	stats := make(map[playerKey]*model.BowlingStat)
	overs := make(map[playerKey]map[overKey]*overTally)

	fielding := make(map[string]string)
	for _, d := range rows {
		if d.Bowler == "" || d.InningsNumber == model.InningsUnknown {
			continue
		}
		if _, seen := fielding[d.Bowler]; !seen {
			fielding[d.Bowler] = teams.Opponent(d.InningsNumber)
		}
	}

	for _, d := range rows {
		if d.Bowler == "" {
			continue
		}
		team := teams.Opponent(d.InningsNumber)
		if d.InningsNumber == model.InningsUnknown {
			team = fielding[d.Bowler]
		}
		k := playerKey{d.Bowler, team}
		b := stats[k]
		if b == nil {
			b = &model.BowlingStat{MatchID: matchID, PlayerName: d.Bowler, Team: k.team}
			stats[k] = b
			overs[k] = make(map[overKey]*overTally)
			order = append(order, k)
		}
		b.BallsBowled++
		b.RunsConceded += d.RunsConceded()
		if d.IsWicket {
			b.WicketsTaken++
		}
		switch d.ExtraType {
		case model.ExtraWide:
			b.Wides += d.Extras
		case model.ExtraNoBall:
			b.NoBalls += d.Extras
		}
		if d.RunsScored == 0 && d.Extras == 0 && !d.IsWicket {
			b.DotBalls++
		}

		if d.OverNumber != nil {
			ok := overKey{d.InningsNumber, *d.OverNumber}
			t := overs[k][ok]
			if t == nil {
				t = &overTally{}
				overs[k][ok] = t
			}
			t.balls++
			t.conceded += d.RunsConceded()
		}
	}

	out := make([]model.BowlingStat, 0, len(order))
	for _, k := range order {
		b := stats[k]
		b.Maidens = maidens(overs[k])
		b.OversBowled = parse.Overs(b.BallsBowled)
		b.EconomyRate = parse.PerBalls(b.RunsConceded, b.BallsBowled, parse.BallsPerOver)
		b.IsThreeWicket = b.WicketsTaken >= 3
		b.IsFiveWicket = b.WicketsTaken >= 5
		out = append(out, *b)
	}
	return out
}

// maidens counts overs of exactly six deliveries conceding nothing. An over
// lengthened by wides or no-balls never qualifies.
func maidens(overs map[overKey]*overTally) int {
	n := 0
	for _, t := range overs {
		if t.balls == parse.BallsPerOver && t.conceded == 0 {
			n++
		}
	}
	return n
}

// --------------------------------------------------------------------------
// Match
// --------------------------------------------------------------------------

// Result decides the winner and margin text from the two innings scores.
// The side batting second wins by its wickets in hand (WicketsPerInnings
// less the wickets it lost); the side batting first wins by the run
// difference. Equal scores are a tie with no winner.
func Result(first, second model.InningsSummary) (winner, margin string) {
	switch {
	case first.FinalScore > second.FinalScore:
		return first.Team, fmt.Sprintf("by %d runs", first.FinalScore-second.FinalScore)
	case second.FinalScore > first.FinalScore:
		return second.Team, fmt.Sprintf("by %d wickets", WicketsPerInnings-second.TotalWickets)
	default:
		return "", "Tie"
	}
}

// MatchSummary combines both innings with the match metadata. Innings runs
// are the scoreboard totals.
func MatchSummary(md model.MatchMetadata, first, second model.InningsSummary) model.MatchSummary {
	winner, margin := Result(first, second)
	return model.MatchSummary{
		MatchID:              md.MatchID,
		Venue:                md.Venue,
		Series:               md.Series,
		Season:               md.Season,
		MatchDate:            md.MatchDate,
		FirstInningsTeam:     md.FirstInningsTeam,
		FirstInningsRuns:     first.FinalScore,
		FirstInningsWickets:  first.TotalWickets,
		FirstInningsOvers:    first.TotalOvers,
		SecondInningsTeam:    md.SecondInningsTeam,
		SecondInningsRuns:    second.FinalScore,
		SecondInningsWickets: second.TotalWickets,
		SecondInningsOvers:   second.TotalOvers,
		Winner:               winner,
		Margin:               margin,
		ResultType:           model.ResultNormal,
		TotalRuns:            first.FinalScore + second.FinalScore,
		TotalWickets:         first.TotalWickets + second.TotalWickets,
		TotalBoundaries:      first.Boundaries + second.Boundaries,
		TotalSixes:           first.Sixes + second.Sixes,
		TotalExtras:          first.TotalExtras + second.TotalExtras,
		PlayerOfMatch:        md.PlayerOfMatch,
	}
}

// Compute derives every gold row for one match. Summary is nil, and the
// returned reason non-empty, when either innings has no deliveries; the
// innings and player rows are still produced.
func Compute(md model.MatchMetadata, rows []model.Delivery) (set model.GoldSet, reason string) {
	teams := md.InningsTeams()
	set.MatchID = md.MatchID

	byInnings := make(map[int][]model.Delivery, 2)
	for _, d := range rows {
		if d.InningsNumber != model.InningsUnknown {
			byInnings[d.InningsNumber] = append(byInnings[d.InningsNumber], d)
		}
	}

	var summaries [2]*model.InningsSummary
	for i, n := range []int{model.InningsFirst, model.InningsSecond} {
		if len(byInnings[n]) == 0 {
			continue
		}
		s := InningsSummary(md.MatchID, n, teams.Team(n), byInnings[n])
		set.Innings = append(set.Innings, s)
		summaries[i] = &s
	}

	set.Batting = BattingStats(md.MatchID, rows)
	set.Bowling = BowlingStats(md.MatchID, teams, rows)

	switch {
	case summaries[0] == nil:
		return set, "missing first innings"
	case summaries[1] == nil:
		return set, "missing second innings"
	}
	summary := MatchSummary(md, *summaries[0], *summaries[1])
	set.Summary = &summary
	return set, ""
}
