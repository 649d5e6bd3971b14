package racedomain

// TopPositions is the number of finishing slots predicted and scored.
const TopPositions = 10

// Picks is the prediction shape shared by an official result and a bet.
// Zero means "no pick" and never matches anything.
type Picks struct {
	PoleDriverID  int64
	DotdDriverID  int64
	WinningTeamID int64
	Top10         [TopPositions]int64
}
