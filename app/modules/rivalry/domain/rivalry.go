// Package rivalrydomain holds head-to-head challenge states and resolution.
package rivalrydomain

// Status is the lifecycle state of a rivalry.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
	StatusFinished Status = "FINISHED"
)

// CanTransitionTo reports whether next is reachable from s in one step.
// DECLINED and FINISHED are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusDeclined
	case StatusAccepted:
		return next == StatusFinished
	}
	return false
}

// Outcome settles a rivalry. A draw has no winner and a zero margin.
type Outcome struct {
	WinnerID *int64
	Margin   int
}

// Resolve compares the two participants' points for the race.
func Resolve(challengerID int64, challengerPoints int, opponentID int64, opponentPoints int) Outcome {
	switch {
	case challengerPoints > opponentPoints:
		return Outcome{WinnerID: &challengerID, Margin: challengerPoints - opponentPoints}
	case opponentPoints > challengerPoints:
		return Outcome{WinnerID: &opponentID, Margin: opponentPoints - challengerPoints}
	}
	return Outcome{}
}
