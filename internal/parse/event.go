package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/albapepper/scoracle-cricket/internal/model"
)

// Runs is the outcome of the runs/extras pass over an event description.
type Runs struct {
	Scored    int // off the bat
	Extras    int
	ExtraType model.ExtraType
}

// Wicket is the outcome of the dismissal pass. Fielder is best effort and
// empty when no name could be captured.
type Wicket struct {
	IsWicket bool
	Type     model.WicketType
	Fielder  string
}

// --------------------------------------------------------------------------
// Runs / extras rules
// --------------------------------------------------------------------------

var (
	wideRe   = regexp.MustCompile(`(\d+)?\s*wides?`)
	noBallRe = regexp.MustCompile(`no\s*balls?`)
	byeRe    = regexp.MustCompile(`(\d+)?\s*byes?`)
	legByeRe = regexp.MustCompile(`(\d+)?\s*leg\s*byes?`)
	runsRe   = regexp.MustCompile(`(\d+)\s*runs?`)
)

// runsRule is one step of the runs pass. Rules run top to bottom over the
// lowercased text. A terminal rule that matches ends the pass; non-terminal
// rules all run, and a later match overwrites an earlier one.
type runsRule struct {
	name     string
	terminal bool
	apply    func(text string, r *Runs) bool
}

var runsRules = []runsRule{
	{name: "four", terminal: true, apply: boundary("four", "4", 4)},
	{name: "six", terminal: true, apply: boundary("six", "6", 6)},
	{name: "wide", apply: countedExtra(wideRe, model.ExtraWide)},
	{name: "noball", apply: func(text string, r *Runs) bool {
		if !noBallRe.MatchString(text) {
			return false
		}
		// The trailing count on a no-ball is bat runs, not extras.
		r.Extras = 1
		r.ExtraType = model.ExtraNoBall
		return true
	}},
	{name: "bye", apply: countedExtra(byeRe, model.ExtraBye)},
	// Must follow bye: "leg bye" also matches the bye pattern.
	{name: "legbye", apply: countedExtra(legByeRe, model.ExtraLegBye)},
	{name: "runs", apply: func(text string, r *Runs) bool {
		m := runsRe.FindStringSubmatch(text)
		if m == nil {
			// "no run", "dot" and anything unrecognised score nothing.
			return false
		}
		r.Scored = atoi(m[1])
		return true
	}},
}

func boundary(word, exact string, runs int) func(string, *Runs) bool {
	return func(text string, r *Runs) bool {
		if !strings.Contains(text, word) && strings.TrimSpace(text) != exact {
			return false
		}
		*r = Runs{Scored: runs}
		return true
	}
}

func countedExtra(re *regexp.Regexp, typ model.ExtraType) func(string, *Runs) bool {
	return func(text string, r *Runs) bool {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return false
		}
		r.Extras = 1
		if m[1] != "" {
			r.Extras = atoi(m[1])
		}
		r.ExtraType = typ
		return true
	}
}

// EventRuns classifies bat runs and extras in an event description such as
// "1 run", "FOUR", "2 wides" or "no ball, 1 run".
func EventRuns(event string) Runs {
	var r Runs
	if strings.TrimSpace(event) == "" {
		return r
	}
	text := strings.ToLower(event)
	for _, rule := range runsRules {
		if rule.apply(text, &r) && rule.terminal {
			break
		}
	}
	return r
}

// --------------------------------------------------------------------------
// Wicket rules
// --------------------------------------------------------------------------

// FielderFunc extracts the fielder named in an event description, returning
// "" when none can be found. It receives the original-case text.
type FielderFunc func(event string) string

var (
	caughtByRe  = regexp.MustCompile(`(?i)caught\s+(?:by\s+)?([a-z][a-z\s]+)`)
	stumpedByRe = regexp.MustCompile(`(?i)stumped\s+(?:by\s+)?([a-z][a-z\s]+)`)
	runOutByRe  = regexp.MustCompile(`(?i)run\s+out\s*\(([^)]+)\)`)
)

// CaptureFielder builds a FielderFunc from a regexp whose first group is the name.
func CaptureFielder(re *regexp.Regexp) FielderFunc {
	return func(event string) string {
		m := re.FindStringSubmatch(event)
		if m == nil {
			return ""
		}
		return strings.TrimSpace(m[1])
	}
}

type wicketRule struct {
	keyword string
	typ     model.WicketType
	fielder FielderFunc
}

// First keyword match wins.
var wicketRules = []wicketRule{
	{keyword: "bowled", typ: model.WicketBowled},
	{keyword: "caught", typ: model.WicketCaught, fielder: CaptureFielder(caughtByRe)},
	{keyword: "lbw", typ: model.WicketLBW},
	{keyword: "stumped", typ: model.WicketStumped, fielder: CaptureFielder(stumpedByRe)},
	{keyword: "run out", typ: model.WicketRunOut, fielder: CaptureFielder(runOutByRe)},
	{keyword: "hit wicket", typ: model.WicketHitWicket},
}

// EventWicket detects a dismissal in an event description. Text without
// "out" or "wicket" is never a wicket. A wicket whose mode matches no
// keyword keeps IsWicket with an empty Type.
func EventWicket(event string) Wicket {
	if strings.TrimSpace(event) == "" {
		return Wicket{}
	}
	text := strings.ToLower(event)
	if !strings.Contains(text, "out") && !strings.Contains(text, "wicket") {
		return Wicket{}
	}
	w := Wicket{IsWicket: true}
	for _, rule := range wicketRules {
		if !strings.Contains(text, rule.keyword) {
			continue
		}
		w.Type = rule.typ
		if rule.fielder != nil {
			w.Fielder = rule.fielder(event)
		}
		break
	}
	return w
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
