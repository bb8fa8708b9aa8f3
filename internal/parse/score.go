package parse

import "regexp"

var scoreRe = regexp.MustCompile(`(\d+)/(\d+)`)

// Score is the running innings total after a ball.
type Score struct {
	Runs    int
	Wickets int
}

// ScoreSnapshot extracts the first "runs/wickets" pair from a score string
// such as "45/2". It is a snapshot, not a delta; ok is false when no pair is
// present.
func ScoreSnapshot(s string) (Score, bool) {
	m := scoreRe.FindStringSubmatch(s)
	if m == nil {
		return Score{}, false
	}
	return Score{Runs: atoi(m[1]), Wickets: atoi(m[2])}, true
}
