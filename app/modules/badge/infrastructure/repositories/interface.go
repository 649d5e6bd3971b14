package badgedb

import (
	"context"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	"github.com/uptrace/bun"
)

// Repository stores achievement definitions and grants.
type Repository interface {
	CreateAchievement(ctx context.Context, db bun.IDB, a *Achievement) error
	GetAchievementByCode(ctx context.Context, db bun.IDB, code string) (*Achievement, error)
	ListAchievements(ctx context.Context, db bun.IDB) ([]Achievement, error)
	// ListByKinds returns the achievements whose rule is one of kinds.
	ListByKinds(ctx context.Context, db bun.IDB, kinds []badgedomain.RuleKind) ([]Achievement, error)
	// ListUnheld returns the achievements of the given kinds that the user
	// has never been granted.
	ListUnheld(ctx context.Context, db bun.IDB, userID int64, kinds []badgedomain.RuleKind) ([]Achievement, error)

	// UserRaceStats measures the user after raceID was scored. ErrNotFound
	// when the user has no bet on the race or the race has no result.
	UserRaceStats(ctx context.Context, db bun.IDB, userID, raceID int64) (*badgedomain.RaceStats, error)

	// GrantOnce inserts the grant unless an equivalent one exists: per
	// lifetime without a season, per season otherwise. Reports whether a row
	// was written.
	GrantOnce(ctx context.Context, db bun.IDB, grant *UserAchievement) (bool, error)
	ListUserAchievements(ctx context.Context, db bun.IDB, userID int64, unseenOnly bool) ([]UserAchievement, error)
	// MarkSeen flags the user's grants with the given ids as seen.
	MarkSeen(ctx context.Context, db bun.IDB, userID int64, ids []int64) (int, error)
}
