package raceservice

import (
	"context"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
)

// Notifier delivers push notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n notifyservice.Notification)
}

// ScoringQueue schedules background scoring of a race for a stored result.
type ScoringQueue interface {
	EnqueueRaceScoring(ctx context.Context, raceID, resultID int64) error
}

// SeasonAwarder grants the end-of-season ranking achievements.
type SeasonAwarder interface {
	ProcessSeasonEndAwards(ctx context.Context, seasonID int64) (int, error)
}
