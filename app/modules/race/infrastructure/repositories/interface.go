package racedb

import (
	"context"
	"time"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for race, result and season persistence.
// Every method accepts an optional bun.IDB so callers can run it inside
// their own transaction; nil falls back to the repository connection.
//
// Status and alert writes are conditional: they only apply when the row is
// still in the expected state and report whether they did.
type Repository interface {
	GetRace(ctx context.Context, db bun.IDB, raceID int64) (*Race, error)

	// GetRaceWithResult loads the race and its result, if any.
	GetRaceWithResult(ctx context.Context, db bun.IDB, raceID int64) (*Race, error)

	CreateRace(ctx context.Context, db bun.IDB, race *Race) error

	// ListDueToOpen returns SCHEDULED races whose bets_open_at <= now.
	ListDueToOpen(ctx context.Context, db bun.IDB, now time.Time) ([]Race, error)

	// ListDueToClose returns OPEN races whose bets_close_at <= now.
	ListDueToClose(ctx context.Context, db bun.IDB, now time.Time) ([]Race, error)

	// ListOpenWithDeadline returns OPEN races that have a close deadline.
	ListOpenWithDeadline(ctx context.Context, db bun.IDB) ([]Race, error)

	// NextChallengeableRace returns the earliest OPEN or SCHEDULED race.
	NextChallengeableRace(ctx context.Context, db bun.IDB) (*Race, error)

	// TransitionStatus moves the race to `to` only while its status is `from`.
	TransitionStatus(ctx context.Context, db bun.IDB, raceID int64, from, to racedomain.Status) (bool, error)

	// MarkFinished sets FINISHED unless the race already is.
	MarkFinished(ctx context.Context, db bun.IDB, raceID int64) error

	// MarkAlertSent flips the alert flag only if it is still unset.
	MarkAlertSent(ctx context.Context, db bun.IDB, raceID int64, alert racedomain.Alert) (bool, error)

	// ReplaceResult deletes any existing result for the race and inserts a new one.
	ReplaceResult(ctx context.Context, db bun.IDB, result *RaceResult) error

	GetResult(ctx context.Context, db bun.IDB, raceID int64) (*RaceResult, error)

	// --- Seasons ---

	CreateSeason(ctx context.Context, db bun.IDB, season *Season) error
	GetSeason(ctx context.Context, db bun.IDB, seasonID int64) (*Season, error)
	GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error)
	DeactivateAllSeasons(ctx context.Context, db bun.IDB) error

	// FinishSeason marks the season finished and inactive.
	FinishSeason(ctx context.Context, db bun.IDB, seasonID int64) error
}
