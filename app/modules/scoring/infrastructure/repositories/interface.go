package scoringdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines bet persistence. A nil db falls back to the
// repository connection.
type Repository interface {
	// UpsertBet inserts the bet or overwrites the picks and team snapshot of
	// the existing (user, race) bet. Points are never changed by an upsert.
	UpsertBet(ctx context.Context, db bun.IDB, bet *Bet) error
	GetBet(ctx context.Context, db bun.IDB, userID, raceID int64) (*Bet, error)
	// ListByRace returns the race's bets ordered by id.
	ListByRace(ctx context.Context, db bun.IDB, raceID int64) ([]Bet, error)
	SetPoints(ctx context.Context, db bun.IDB, betID int64, points int) error
}
