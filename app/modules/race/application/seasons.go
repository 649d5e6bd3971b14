package raceservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// CreateSeason stores a season. With activate set, every other season is
// deactivated first.
func (s *RaceService) CreateSeason(ctx context.Context, year int, activate bool) (*racedb.Season, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedb.Season, error], error) {
		if activate {
			if err := s.repo.DeactivateAllSeasons(ctx, db); err != nil {
				return results.OperationResult[*racedb.Season, error]{}, fmt.Errorf("failed to deactivate seasons: %w", err)
			}
		}
		season := &racedb.Season{Year: year, IsActive: activate}
		if err := s.repo.CreateSeason(ctx, db, season); err != nil {
			return results.OperationResult[*racedb.Season, error]{}, fmt.Errorf("failed to create season: %w", err)
		}
		return results.SuccessResult[*racedb.Season, error](season), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "CreateSeason", strconv.Itoa(year),
		func(ctx context.Context) (results.OperationResult[*racedb.Season, error], error) {
			return telemetry.RunInTx(ctx, s.db, createTx)
		})
	return telemetry.Unwrap(result, err)
}

// CloseSeason grants the season ranking achievements and then marks the
// season finished. Awards are granted before the season is marked so a
// failed run can simply be repeated.
func (s *RaceService) CloseSeason(ctx context.Context, seasonID int64) (int, error) {
	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "CloseSeason", strconv.FormatInt(seasonID, 10),
		func(ctx context.Context) (results.OperationResult[int, error], error) {
			return s.closeSeasonLogic(ctx, seasonID)
		})
	return telemetry.Unwrap(result, err)
}

func (s *RaceService) closeSeasonLogic(ctx context.Context, seasonID int64) (results.OperationResult[int, error], error) {
	season, err := s.repo.GetSeason(ctx, nil, seasonID)
	if err != nil {
		if errors.Is(err, racedb.ErrNotFound) {
			return results.FailureResult[int, error](ErrSeasonNotFound), nil
		}
		return results.OperationResult[int, error]{}, fmt.Errorf("failed to load season: %w", err)
	}
	if season.IsFinished {
		return results.FailureResult[int, error](ErrSeasonAlreadyFinished), nil
	}

	granted := 0
	if s.awards != nil {
		granted, err = s.awards.ProcessSeasonEndAwards(ctx, seasonID)
		if err != nil {
			return results.OperationResult[int, error]{}, fmt.Errorf("failed to grant season awards: %w", err)
		}
	}

	if err := s.repo.FinishSeason(ctx, nil, seasonID); err != nil {
		return results.OperationResult[int, error]{}, fmt.Errorf("failed to finish season: %w", err)
	}

	s.logger.InfoContext(ctx, "Season closed",
		attr.SeasonID(seasonID),
		attr.Int("year", season.Year),
		attr.Int("awards_granted", granted),
	)
	return results.SuccessResult[int, error](granted), nil
}
