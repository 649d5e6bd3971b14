package badgeservice

import (
	"context"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
)

// Service grants achievements.
type Service interface {
	// EvaluateAfterRace checks the per-race rules the user does not hold yet
	// against the user's stats after raceID was scored.
	EvaluateAfterRace(ctx context.Context, userID, raceID int64) (int, error)
	// ProcessSeasonEndAwards grants the ranking achievements of a season.
	ProcessSeasonEndAwards(ctx context.Context, seasonID int64) (int, error)

	CreateAchievement(ctx context.Context, req CreateAchievementRequest) (*badgedb.Achievement, error)
	ListAchievements(ctx context.Context) ([]badgedb.Achievement, error)
	ListUserAchievements(ctx context.Context, userID int64, unseenOnly bool) ([]badgedb.UserAchievement, error)
	MarkSeen(ctx context.Context, userID int64, ids []int64) (int, error)
}

// StandingsSource ranks a season from live data.
type StandingsSource interface {
	ComputeStandings(ctx context.Context, seasonID int64) (rankingdomain.Standings, error)
}

// Notifier delivers push notifications. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n notifyservice.Notification)
}

type CreateAchievementRequest struct {
	Code        string
	Name        string
	Description string
	Icon        string
	Color       string
	RuleType    badgedomain.RuleKind
	Threshold   int
}
