package scoringservice

import "errors"

var (
	ErrRaceNotFound  = errors.New("race not found")
	ErrResultMissing = errors.New("race has no official result")
	// ErrRecalculationInProgress means another writer holds the race; the
	// caller should retry later.
	ErrRecalculationInProgress = errors.New("recalculation already in progress for race")
	ErrRaceFinished            = errors.New("race already finished")
	ErrBettingClosed           = errors.New("betting is closed for race")
	ErrInvalidBet              = errors.New("invalid bet")
)
