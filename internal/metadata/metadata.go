// Package metadata normalizes the scraped match-details table into a
// canonical match record. All parsers degrade to empty values on input they
// do not recognise.
package metadata

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/albapepper/scoracle-cricket/internal/model"
)

var tossRe = regexp.MustCompile(`(?i)^(.*?),\s*who chose to (bat|field)`)

// Toss parses "Mumbai Indians, who chose to field" into the toss winner and
// decision ("bat" or "field"). Both are empty when the text does not match.
func Toss(s string) (winner, decision string) {
	m := tossRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.ToLower(m[2])
}

// Umpires returns the first two comma-separated on-field umpires.
func Umpires(s string) (first, second string) {
	if strings.TrimSpace(s) == "" {
		return "", ""
	}
	parts := strings.Split(s, ",")
	first = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		second = strings.TrimSpace(parts[1])
	}
	return first, second
}

// DateLayouts are tried in order; the first that parses wins.
var DateLayouts = []string{
	"January 2, 2006", // February 14, 2025
	"Jan 2, 2006",     // Feb 14, 2025
	"2 January 2006",  // 14 February 2025
	"2006-01-02",
}

// MatchDate parses the "Match days" text. Cricinfo appends session notes
// after " - " ("9 April 2025 - night match (20-over match)"); when the full
// text fails, the part before the first " - " is tried with the same layouts.
func MatchDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t := parseDate(s); t != nil {
		return t
	}
	if head, _, ok := strings.Cut(s, " - "); ok {
		return parseDate(strings.TrimSpace(head))
	}
	return nil
}

func parseDate(s string) *time.Time {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Debutants splits the debut list ("A (MI), B (CSK)") into names. It returns
// nil when the source text is absent.
func Debutants(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Replacement is a normalized {out, in, team, type} entry.
type Replacement struct {
	Out  string
	In   string
	Team string
	Type string
}

// Replacements decodes the replacement blob. JSON objects and arrays of
// objects are recognised; any other non-empty text is reported with
// parsed=false and yields no entries, since free-text descriptions are not
// supported.
func Replacements(s string) (out []Replacement, parsed bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, false
	}
	switch v := raw.(type) {
	case map[string]any:
		return []Replacement{replacementFrom(v)}, true
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				out = append(out, replacementFrom(obj))
			}
		}
		return out, true
	}
	return nil, false
}

func replacementFrom(obj map[string]any) Replacement {
	r := Replacement{
		Out:  field(obj, "out"),
		In:   field(obj, "in"),
		Team: field(obj, "team"),
		Type: field(obj, "type"),
	}
	if r.Type == "" {
		r.Type = "unknown"
	}
	return r
}

func field(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

// Normalize builds the canonical match record and its replacements from the
// raw key/value row. unparsedReplacements is true when replacement text was
// present but not in a supported form.
func Normalize(raw model.RawMatchMetadata) (md model.MatchMetadata, repl []model.PlayerReplacement, unparsedReplacements bool) {
	winner, decision := Toss(raw.Toss)
	u1, u2 := Umpires(raw.Umpires)

	md = model.MatchMetadata{
		MatchID:           raw.MatchID,
		Venue:             strings.TrimSpace(raw.Venue),
		Series:            strings.TrimSpace(raw.Series),
		Season:            strings.TrimSpace(raw.Season),
		MatchDate:         MatchDate(raw.MatchDays),
		TossWinner:        winner,
		TossDecision:      decision,
		Umpire1:           u1,
		Umpire2:           u2,
		TVUmpire:          strings.TrimSpace(raw.TVUmpire),
		ReserveUmpire:     strings.TrimSpace(raw.ReserveUmpire),
		MatchReferee:      strings.TrimSpace(raw.MatchReferee),
		PlayerOfMatch:     strings.TrimSpace(raw.PlayerOfMatch),
		FirstInningsTeam:  strings.TrimSpace(raw.FirstInnings),
		SecondInningsTeam: strings.TrimSpace(raw.SecondInnings),
		Debutants:         Debutants(raw.Debuts),
		HoursOfPlay:       strings.TrimSpace(raw.HoursOfPlay),
		Points:            strings.TrimSpace(raw.Points),
	}

	entries, parsed := Replacements(raw.PlayerReplacements)
	for _, e := range entries {
		repl = append(repl, model.PlayerReplacement{
			MatchID:         raw.MatchID,
			PlayerOut:       e.Out,
			PlayerIn:        e.In,
			Team:            e.Team,
			ReplacementType: e.Type,
		})
	}
	return md, repl, !parsed
}

// Validate reports structural problems that make the record unusable for
// the innings join. It does not reject partially parsed records.
func Validate(md model.MatchMetadata) error {
	if md.FirstInningsTeam != "" && md.FirstInningsTeam == md.SecondInningsTeam {
		return fmt.Errorf("match %d: first and second innings team are both %q", md.MatchID, md.FirstInningsTeam)
	}
	return nil
}
