package parse

import (
	"regexp"
	"strings"
)

var bowlerToBatsmanRe = regexp.MustCompile(`^(.+?)\s+to\s+([^,]+)`)

// BowlerBatsman splits the "<bowler> to <batsman>, ..." prefix carried by
// commentary event lines. Both are empty when the prefix is absent.
func BowlerBatsman(event string) (bowler, batsman string) {
	m := bowlerToBatsmanRe.FindStringSubmatch(strings.TrimSpace(event))
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}
