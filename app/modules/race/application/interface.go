package raceservice

import (
	"context"
	"time"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
)

// Service drives the race lifecycle: betting phases, countdown alerts,
// official results and seasons.
type Service interface {
	// ProcessTick advances every due race one phase, then fires due alerts.
	ProcessTick(ctx context.Context) (TickSummary, error)

	// PublishResult stores the official result and queues scoring.
	PublishResult(ctx context.Context, raceID int64, picks racedomain.Picks) (*racedb.RaceResult, error)

	ScheduleRace(ctx context.Context, req ScheduleRaceRequest) (*racedb.Race, error)

	// ResolveTime parses an absolute or natural-language time in the race
	// timezone.
	ResolveTime(expr string) (time.Time, error)

	CreateSeason(ctx context.Context, year int, activate bool) (*racedb.Season, error)

	// CloseSeason grants season awards, then marks the season finished.
	CloseSeason(ctx context.Context, seasonID int64) (int, error)
}
