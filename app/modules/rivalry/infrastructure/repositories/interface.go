package rivalrydb

import (
	"context"

	rivalrydomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/domain"
	"github.com/uptrace/bun"
)

// Repository stores rivalries.
type Repository interface {
	CreateRivalry(ctx context.Context, db bun.IDB, r *Rivalry) error
	GetRivalry(ctx context.Context, db bun.IDB, rivalryID int64) (*Rivalry, error)
	// ExistsForPair reports whether the two users already have a rivalry on
	// the race, in either direction and any status.
	ExistsForPair(ctx context.Context, db bun.IDB, raceID, userA, userB int64) (bool, error)
	ListByRaceAndStatus(ctx context.Context, db bun.IDB, raceID int64, status rivalrydomain.Status) ([]Rivalry, error)
	ListForUser(ctx context.Context, db bun.IDB, userID int64, status *rivalrydomain.Status) ([]Rivalry, error)

	// RacePoints returns the scored points of each user's bet on the race.
	// Users without a bet are absent from the map.
	RacePoints(ctx context.Context, db bun.IDB, raceID int64, userIDs []int64) (map[int64]int, error)

	// TransitionStatus moves the rivalry to `to` only while it is `from`.
	TransitionStatus(ctx context.Context, db bun.IDB, rivalryID int64, from, to rivalrydomain.Status) (bool, error)
	// Finish records the outcome of an ACCEPTED rivalry.
	Finish(ctx context.Context, db bun.IDB, rivalryID int64, outcome rivalrydomain.Outcome) (bool, error)
}
