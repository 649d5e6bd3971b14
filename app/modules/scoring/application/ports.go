package scoringservice

import (
	"context"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	"github.com/uptrace/bun"
)

// TeamLedger is the single writer of team point totals.
type TeamLedger interface {
	Credit(ctx context.Context, db bun.IDB, teamID int64, points int) error
	Debit(ctx context.Context, db bun.IDB, teamID int64, points int) error
}

// TeamDirectory resolves the team snapshot recorded on a bet.
type TeamDirectory interface {
	TeamIDForUser(ctx context.Context, db bun.IDB, seasonID, userID int64) (*int64, error)
}

// BadgeEvaluator grants per-race achievements for one scored bet.
type BadgeEvaluator interface {
	EvaluateAfterRace(ctx context.Context, userID, raceID int64) (int, error)
}

// RivalryResolver settles the accepted rivalries of a scored race.
type RivalryResolver interface {
	ProcessRivalries(ctx context.Context, raceID int64) (int, error)
}

// LeaderboardRefresher rebuilds the cached standings of a season.
type LeaderboardRefresher interface {
	RefreshLeaderboard(ctx context.Context, seasonID int64) error
}

// Notifier delivers push notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n notifyservice.Notification)
}

// Hooks are the collaborators run after points are committed. Any of them
// may be nil.
type Hooks struct {
	Badges      BadgeEvaluator
	Rivalries   RivalryResolver
	Leaderboard LeaderboardRefresher
	Notifier    Notifier
}
