package teamservice

import (
	"context"

	teamdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Service manages team membership and exposes the team ledger.
type Service interface {
	CreateTeam(ctx context.Context, seasonID int64, name string, captainID int64) (*teamdb.Team, error)
	GetTeam(ctx context.Context, teamID int64) (*teamdb.Team, error)

	// TeamIDForUser returns the id of the season team userID belongs to,
	// or nil when the user has no team.
	TeamIDForUser(ctx context.Context, db bun.IDB, seasonID, userID int64) (*int64, error)

	Join(ctx context.Context, teamID, userID int64) (*teamdb.Team, error)
	// Leave removes the partner userID from their season team and debits
	// the points they contributed to it.
	Leave(ctx context.Context, seasonID, userID int64) (MembershipChange, error)
	// KickPartner is Leave initiated by the captain.
	KickPartner(ctx context.Context, teamID, captainID int64) (MembershipChange, error)

	Ledger() *Ledger
}

// MembershipChange describes a partner removal.
type MembershipChange struct {
	TeamID        int64
	UserID        int64
	PointsDebited int
	BetsDetached  int
}
