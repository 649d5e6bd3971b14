package scoringdomain

import (
	"errors"
	"fmt"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
)

var (
	ErrIncompleteBet = errors.New("every pick is required")
	ErrDuplicatePick = errors.New("a driver can only be picked once in the top 10")
)

// ValidateBet checks the input rules for a user prediction. The scorer
// itself tolerates bets that break them.
func ValidateBet(p racedomain.Picks) error {
	if p.PoleDriverID == 0 || p.DotdDriverID == 0 || p.WinningTeamID == 0 {
		return ErrIncompleteBet
	}
	seen := make(map[int64]int, racedomain.TopPositions)
	for i, id := range p.Top10 {
		if id == 0 {
			return fmt.Errorf("p%d: %w", i+1, ErrIncompleteBet)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("p%d repeats p%d: %w", i+1, prev+1, ErrDuplicatePick)
		}
		seen[id] = i
	}
	return nil
}
