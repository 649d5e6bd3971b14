package rivalryservice

import "errors"

var (
	ErrRivalryNotFound     = errors.New("rivalry not found")
	ErrSelfChallenge       = errors.New("cannot challenge yourself")
	ErrNoChallengeableRace = errors.New("no open or scheduled race to challenge on")
	ErrDuplicateChallenge  = errors.New("a challenge between these users already exists for the race")
	ErrNotOpponent         = errors.New("challenge is not addressed to this user")
	ErrNotPending          = errors.New("challenge is no longer pending")
)
