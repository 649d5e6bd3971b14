package teamdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the team data access used by the ledger and the
// membership service. A nil db falls back to the repository connection.
type Repository interface {
	CreateTeam(ctx context.Context, db bun.IDB, team *Team) error
	GetTeam(ctx context.Context, db bun.IDB, teamID int64) (*Team, error)
	// GetTeamForUpdate loads the team and locks its row for the rest of the
	// transaction.
	GetTeamForUpdate(ctx context.Context, db bun.IDB, teamID int64) (*Team, error)
	// FindTeamForUser returns the season team where userID is captain or
	// partner.
	FindTeamForUser(ctx context.Context, db bun.IDB, seasonID, userID int64) (*Team, error)
	ListTeamsBySeason(ctx context.Context, db bun.IDB, seasonID int64) ([]Team, error)

	// SetPartner fills an empty partner slot. It reports false if the slot
	// was taken concurrently.
	SetPartner(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error)
	// ClearPartner empties the partner slot if it still holds userID.
	ClearPartner(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error)

	AddPoints(ctx context.Context, db bun.IDB, teamID int64, points int) error
	SubtractPointsClamped(ctx context.Context, db bun.IDB, teamID int64, points int) error

	// SumContributedPoints sums the points of userID's bets carrying teamID
	// as snapshot.
	SumContributedPoints(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error)
	// DetachBets clears the team snapshot of userID's bets for teamID.
	DetachBets(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error)
}
