package rivalryservice

import (
	"context"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	rivalrydb "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/infrastructure/repositories"
)

// Service manages head-to-head challenges.
type Service interface {
	// ProcessRivalries settles the accepted rivalries of a scored race.
	ProcessRivalries(ctx context.Context, raceID int64) (int, error)

	Challenge(ctx context.Context, challengerID, opponentID int64) (*rivalrydb.Rivalry, error)
	Accept(ctx context.Context, rivalryID, userID int64) (*rivalrydb.Rivalry, error)
	Decline(ctx context.Context, rivalryID, userID int64) (*rivalrydb.Rivalry, error)

	// History lists the user's rivalries, newest first. finishedOnly limits
	// it to settled ones.
	History(ctx context.Context, userID int64, finishedOnly bool) ([]rivalrydb.Rivalry, error)
}

// Notifier delivers push notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n notifyservice.Notification)
}
