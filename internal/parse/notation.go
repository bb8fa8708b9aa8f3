// Package parse turns the free-text fields of a scraped commentary row into
// typed values. Every function here is pure and total: malformed input yields
// the documented zero result, never an error or a panic.
package parse

import (
	"math"
	"strconv"
	"strings"
)

// BallsPerOver is the number of legal deliveries in an over.
const BallsPerOver = 6

// Notation is a parsed "O.B" ball reference.
type Notation struct {
	Over       int
	Ball       int // absolute: Over*6 + BallInOver
	BallInOver int
}

// BallNotation parses "5.6" into over 5, ball-in-over 6, absolute ball 36.
// The absolute index is an ordering convenience; it is not corrected for
// wides or no-balls re-bowled within the over. ok is false for empty or
// malformed input.
func BallNotation(s string) (n Notation, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Notation{}, false
	}
	overStr, ballStr, found := strings.Cut(s, ".")
	if !found {
		return Notation{}, false
	}
	over, err := strconv.Atoi(strings.TrimSpace(overStr))
	if err != nil || over < 0 {
		return Notation{}, false
	}
	ball, err := strconv.Atoi(strings.TrimSpace(ballStr))
	if err != nil || ball < 0 {
		return Notation{}, false
	}
	return Notation{
		Over:       over,
		Ball:       over*BallsPerOver + ball,
		BallInOver: ball,
	}, true
}

// FormatOvers renders a ball count as over.ball notation: 7 balls is "1.1".
func FormatOvers(balls int) string {
	if balls < 0 {
		balls = 0
	}
	return strconv.Itoa(balls/BallsPerOver) + "." + strconv.Itoa(balls%BallsPerOver)
}

// Overs is FormatOvers as a number for NUMERIC columns: 7 balls is 1.1.
func Overs(balls int) float64 {
	if balls < 0 {
		balls = 0
	}
	// Integer tenths avoid 1 + 0.1 drifting off one decimal place.
	tenths := (balls/BallsPerOver)*10 + balls%BallsPerOver
	return float64(tenths) / 10
}

// PerBalls scales n per ball over balls and rounds to 2 decimals:
// PerBalls(runs, balls, 100) is a strike rate, PerBalls(runs, balls, 6) an
// economy or run rate. Zero balls yields 0.
func PerBalls(n, balls int, scale float64) float64 {
	if balls <= 0 {
		return 0
	}
	return Round2(float64(n) / float64(balls) * scale)
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
