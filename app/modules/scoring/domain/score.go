package scoringdomain

import (
	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
)

// MaxPoints is the best score a single bet can reach: pole, driver of the
// day, winning team and every finishing slot.
const MaxPoints = 3 + racedomain.TopPositions

// Hits lists which comparisons of a bet matched the official result.
type Hits struct {
	Pole      bool
	Dotd      bool
	Winner    bool
	Positions [racedomain.TopPositions]bool
}

// Points is the number of matched comparisons.
func (h Hits) Points() int {
	n := 0
	for _, ok := range []bool{h.Pole, h.Dotd, h.Winner} {
		if ok {
			n++
		}
	}
	for _, ok := range h.Positions {
		if ok {
			n++
		}
	}
	return n
}

// Compare matches bet against result field by field. Finishing slots only
// match on the exact position. An empty pick never matches.
func Compare(bet, result racedomain.Picks) Hits {
	h := Hits{
		Pole:   same(bet.PoleDriverID, result.PoleDriverID),
		Dotd:   same(bet.DotdDriverID, result.DotdDriverID),
		Winner: same(bet.WinningTeamID, result.WinningTeamID),
	}
	for i := range bet.Top10 {
		h.Positions[i] = same(bet.Top10[i], result.Top10[i])
	}
	return h
}

// Score is the points bet earns against result.
func Score(bet, result racedomain.Picks) int {
	return Compare(bet, result).Points()
}

func same(a, b int64) bool {
	return a != 0 && a == b
}
