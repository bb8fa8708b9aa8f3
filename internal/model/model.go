// Package model defines the canonical record shapes that flow between the
// medallion stages. Bronze rows come in as scraped, silver rows are the
// cleaned per-ball and per-match records, gold rows are the aggregates.
//
// Every stage reads and writes these types; the store implementations map
// them to tables and nothing else.
package model

import "time"

// ExtraType classifies the extra conceded on a delivery. The zero value means
// no extra and is stored as SQL NULL.
type ExtraType string

const (
	ExtraNone   ExtraType = ""
	ExtraWide   ExtraType = "wide"
	ExtraNoBall ExtraType = "noball"
	ExtraBye    ExtraType = "bye"
	ExtraLegBye ExtraType = "legbye"
)

// WicketType is the mode of dismissal. The zero value means no wicket.
type WicketType string

const (
	WicketNone      WicketType = ""
	WicketBowled    WicketType = "bowled"
	WicketCaught    WicketType = "caught"
	WicketLBW       WicketType = "lbw"
	WicketStumped   WicketType = "stumped"
	WicketRunOut    WicketType = "run out"
	WicketHitWicket WicketType = "hit wicket"
)

// Innings ordinals. InningsUnknown is stored as SQL NULL.
const (
	InningsUnknown = 0
	InningsFirst   = 1
	InningsSecond  = 2
)

// --------------------------------------------------------------------------
// Bronze
// --------------------------------------------------------------------------

// RawDelivery is one scraped commentary row. Seq is the capture position
// within the match and is the only ordering the scraper guarantees.
type RawDelivery struct {
	MatchID        int64  `json:"match_id"`
	Seq            int    `json:"seq"`
	InningsLabel   string `json:"innings"`
	Ball           string `json:"ball"`
	EventText      string `json:"event"`
	ScoreText      string `json:"score"`
	BowlerName     string `json:"bowler"`
	BatsmanName    string `json:"batsman"`
	CommentaryText string `json:"commentary"`
}

// RawMatchMetadata is the scraped key/value match-details table.
type RawMatchMetadata struct {
	MatchID            int64  `json:"match_id"`
	Venue              string `json:"venue"`
	Series             string `json:"series"`
	Season             string `json:"season"`
	Toss               string `json:"toss"`
	Umpires            string `json:"umpires"`
	TVUmpire           string `json:"tv_umpire"`
	ReserveUmpire      string `json:"reserve_umpire"`
	MatchReferee       string `json:"match_referee"`
	MatchDays          string `json:"match_days"`
	PlayerOfMatch      string `json:"player_of_the_match"`
	FirstInnings       string `json:"first_innings"`
	SecondInnings      string `json:"second_innings"`
	PlayerReplacements string `json:"player_replacements"`
	Debuts             string `json:"t20_debut"`
	HoursOfPlay        string `json:"hours_of_play_local_time"`
	Points             string `json:"points"`
}

// --------------------------------------------------------------------------
// Silver
// --------------------------------------------------------------------------

// MatchMetadata is the normalized per-match record. Empty strings map to SQL
// NULL; Debutants is nil when the source had no debut list.
type MatchMetadata struct {
	MatchID           int64      `json:"match_id"`
	Venue             string     `json:"venue,omitempty"`
	Series            string     `json:"series,omitempty"`
	Season            string     `json:"season,omitempty"`
	MatchDate         *time.Time `json:"match_date,omitempty"`
	TossWinner        string     `json:"toss_winner,omitempty"`
	TossDecision      string     `json:"toss_decision,omitempty"` // "bat" or "field"
	Umpire1           string     `json:"umpire_1,omitempty"`
	Umpire2           string     `json:"umpire_2,omitempty"`
	TVUmpire          string     `json:"tv_umpire,omitempty"`
	ReserveUmpire     string     `json:"reserve_umpire,omitempty"`
	MatchReferee      string     `json:"match_referee,omitempty"`
	PlayerOfMatch     string     `json:"player_of_the_match,omitempty"`
	FirstInningsTeam  string     `json:"first_innings_team,omitempty"`
	SecondInningsTeam string     `json:"second_innings_team,omitempty"`
	Debutants         []string   `json:"debutants,omitempty"`
	HoursOfPlay       string     `json:"hours_of_play_local_time,omitempty"`
	Points            string     `json:"points,omitempty"`
}

// InningsTeams returns the batting-order mapping for this match.
func (m MatchMetadata) InningsTeams() InningsTeams {
	return InningsTeams{First: m.FirstInningsTeam, Second: m.SecondInningsTeam}
}

// InningsTeams maps a match to the labels of the side batting first and second.
type InningsTeams struct {
	First  string
	Second string
}

// Number resolves a scraped innings label to its ordinal by exact match.
func (t InningsTeams) Number(label string) int {
	switch {
	case label == "":
		return InningsUnknown
	case label == t.First:
		return InningsFirst
	case label == t.Second:
		return InningsSecond
	default:
		return InningsUnknown
	}
}

// Team returns the batting side for an innings ordinal.
func (t InningsTeams) Team(innings int) string {
	switch innings {
	case InningsFirst:
		return t.First
	case InningsSecond:
		return t.Second
	default:
		return ""
	}
}

// Opponent returns the fielding side for an innings ordinal.
func (t InningsTeams) Opponent(innings int) string {
	switch innings {
	case InningsFirst:
		return t.Second
	case InningsSecond:
		return t.First
	default:
		return ""
	}
}

// PlayerReplacement is a substitution recorded in the match details. The
// natural key is (MatchID, PlayerOut, PlayerIn).
type PlayerReplacement struct {
	MatchID         int64  `json:"match_id"`
	PlayerOut       string `json:"player_out"`
	PlayerIn        string `json:"player_in"`
	Team            string `json:"team,omitempty"`
	ReplacementType string `json:"replacement_type"`
}

// Delivery is the canonical per-ball record. Nil pointers are values the
// parsers could not recover from the scraped text.
type Delivery struct {
	MatchID       int64      `json:"match_id"`
	Seq           int        `json:"seq"`
	OverNumber    *int       `json:"over_number"`
	BallNumber    *int       `json:"ball_number"`
	BallInOver    *int       `json:"ball_in_over"`
	BallNotation  string     `json:"ball_notation,omitempty"`
	Bowler        string     `json:"bowler,omitempty"`
	Batsman       string     `json:"batsman,omitempty"`
	NonStriker    string     `json:"non_striker,omitempty"`
	RunsScored    int        `json:"runs_scored"`
	Extras        int        `json:"extras"`
	ExtraType     ExtraType  `json:"extra_type,omitempty"`
	IsWicket      bool       `json:"is_wicket"`
	WicketType    WicketType `json:"wicket_type,omitempty"`
	Fielder       string     `json:"fielder,omitempty"`
	InningsTeam   string     `json:"innings,omitempty"`
	InningsNumber int        `json:"innings_number,omitempty"`
	TotalRuns     *int       `json:"total_runs"`
	TotalWickets  *int       `json:"total_wickets"`
	RawEvent      string     `json:"raw_event,omitempty"`
	Commentary    string     `json:"commentary,omitempty"`
}

// RunsConceded is bat runs plus extras for this ball.
func (d Delivery) RunsConceded() int {
	return d.RunsScored + d.Extras
}

// --------------------------------------------------------------------------
// Gold
// --------------------------------------------------------------------------

// InningsSummary aggregates one side's innings. TotalOvers is over.ball
// display notation (7 balls is 1.1), not a decimal fraction of overs.
type InningsSummary struct {
	MatchID          int64   `json:"match_id"`
	InningsNumber    int     `json:"innings_number"`
	Team             string  `json:"team"`
	TotalRuns        int     `json:"total_runs"`
	FinalScore       int     `json:"final_score"`
	TotalWickets     int     `json:"total_wickets"`
	TotalOvers       float64 `json:"total_overs"`
	TotalBalls       int     `json:"total_balls"`
	Boundaries       int     `json:"boundaries"`
	Sixes            int     `json:"sixes"`
	Dots             int     `json:"dots"`
	Singles          int     `json:"singles"`
	Twos             int     `json:"twos"`
	Wides            int     `json:"wides"`
	NoBalls          int     `json:"noballs"`
	Byes             int     `json:"byes"`
	LegByes          int     `json:"legbyes"`
	TotalExtras      int     `json:"total_extras"`
	RunRate          float64 `json:"run_rate"`
	PowerplayRuns    int     `json:"powerplay_runs"`
	PowerplayWickets int     `json:"powerplay_wickets"`
}

// BattingStat is one batsman's line for a match.
type BattingStat struct {
	MatchID       int64      `json:"match_id"`
	PlayerName    string     `json:"player_name"`
	Team          string     `json:"team,omitempty"`
	RunsScored    int        `json:"runs_scored"`
	BallsFaced    int        `json:"balls_faced"`
	Fours         int        `json:"fours"`
	Sixes         int        `json:"sixes"`
	StrikeRate    float64    `json:"strike_rate"`
	IsOut         bool       `json:"is_out"`
	DismissalType WicketType `json:"dismissal_type,omitempty"`
	IsFifty       bool       `json:"is_fifty"`
	IsCentury     bool       `json:"is_century"`
}

// BowlingStat is one bowler's figures for a match.
type BowlingStat struct {
	MatchID       int64   `json:"match_id"`
	PlayerName    string  `json:"player_name"`
	Team          string  `json:"team,omitempty"`
	OversBowled   float64 `json:"overs_bowled"`
	BallsBowled   int     `json:"balls_bowled"`
	RunsConceded  int     `json:"runs_conceded"`
	WicketsTaken  int     `json:"wickets_taken"`
	Maidens       int     `json:"maidens"`
	EconomyRate   float64 `json:"economy_rate"`
	Wides         int     `json:"wides"`
	NoBalls       int     `json:"noballs"`
	DotBalls      int     `json:"dot_balls"`
	IsThreeWicket bool    `json:"is_three_wicket"`
	IsFiveWicket  bool    `json:"is_five_wicket"`
}

// ResultNormal is the only result type currently modelled.
const ResultNormal = "normal"

// MatchSummary is the per-match result row. Winner is empty on a tie.
type MatchSummary struct {
	MatchID              int64      `json:"match_id"`
	Venue                string     `json:"venue,omitempty"`
	Series               string     `json:"series,omitempty"`
	Season               string     `json:"season,omitempty"`
	MatchDate            *time.Time `json:"match_date,omitempty"`
	FirstInningsTeam     string     `json:"first_innings_team"`
	FirstInningsRuns     int        `json:"first_innings_runs"`
	FirstInningsWickets  int        `json:"first_innings_wickets"`
	FirstInningsOvers    float64    `json:"first_innings_overs"`
	SecondInningsTeam    string     `json:"second_innings_team"`
	SecondInningsRuns    int        `json:"second_innings_runs"`
	SecondInningsWickets int        `json:"second_innings_wickets"`
	SecondInningsOvers   float64    `json:"second_innings_overs"`
	Winner               string     `json:"winner,omitempty"`
	Margin               string     `json:"margin"`
	ResultType           string     `json:"result_type"`
	TotalRuns            int        `json:"total_runs"`
	TotalWickets         int        `json:"total_wickets"`
	TotalBoundaries      int        `json:"total_boundaries"`
	TotalSixes           int        `json:"total_sixes"`
	TotalExtras          int        `json:"total_extras"`
	PlayerOfMatch        string     `json:"player_of_the_match,omitempty"`
}

// GoldSet is everything the aggregation engine derives for one match.
// Summary is nil when either innings is missing.
type GoldSet struct {
	MatchID int64
	Summary *MatchSummary
	Innings []InningsSummary
	Batting []BattingStat
	Bowling []BowlingStat
}

// GoldWriteMode selects how gold rows replace earlier runs.
type GoldWriteMode string

const (
	// GoldReplace purges the match's gold rows and rewrites them in one
	// transaction, so reruns always reflect the latest silver data.
	GoldReplace GoldWriteMode = "replace"
	// GoldInsertMissing upserts the match summary and skips innings and
	// player rows that already exist.
	GoldInsertMissing GoldWriteMode = "insert-missing"
)

// ParseGoldWriteMode falls back to GoldReplace for unknown values.
func ParseGoldWriteMode(s string) GoldWriteMode {
	if GoldWriteMode(s) == GoldInsertMissing {
		return GoldInsertMissing
	}
	return GoldReplace
}

// BattingLeader is a career batting line across every match in gold.
type BattingLeader struct {
	PlayerName string  `json:"player_name"`
	Matches    int     `json:"matches"`
	Runs       int     `json:"runs"`
	BallsFaced int     `json:"balls_faced"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	HighScore  int     `json:"high_score"`
	Fifties    int     `json:"fifties"`
	Centuries  int     `json:"centuries"`
	StrikeRate float64 `json:"strike_rate"`
}

// BowlingLeader is a career bowling line across every match in gold.
type BowlingLeader struct {
	PlayerName   string  `json:"player_name"`
	Matches      int     `json:"matches"`
	Wickets      int     `json:"wickets"`
	BallsBowled  int     `json:"balls_bowled"`
	RunsConceded int     `json:"runs_conceded"`
	Maidens      int     `json:"maidens"`
	FiveWickets  int     `json:"five_wicket_hauls"`
	EconomyRate  float64 `json:"economy_rate"`
}
