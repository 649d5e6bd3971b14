package raceservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
)

// ScheduleRaceRequest describes a new race. SeasonID zero selects the active
// season. Nil deadlines leave the race SCHEDULED until an admin sets them.
type ScheduleRaceRequest struct {
	SeasonID    int64
	Name        string
	Country     string
	RaceDate    time.Time
	BetsOpenAt  *time.Time
	BetsCloseAt *time.Time
}

// ScheduleRace validates and stores a new race.
func (s *RaceService) ScheduleRace(ctx context.Context, req ScheduleRaceRequest) (*racedb.Race, error) {
	scheduleTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedb.Race, error], error) {
		return s.scheduleRaceLogic(ctx, db, req)
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "ScheduleRace", req.Name,
		func(ctx context.Context) (results.OperationResult[*racedb.Race, error], error) {
			return telemetry.RunInTx(ctx, s.db, scheduleTx)
		})
	return telemetry.Unwrap(result, err)
}

func (s *RaceService) scheduleRaceLogic(ctx context.Context, db bun.IDB, req ScheduleRaceRequest) (results.OperationResult[*racedb.Race, error], error) {
	if err := validateSchedule(req); err != nil {
		return results.FailureResult[*racedb.Race, error](err), nil
	}

	seasonID := req.SeasonID
	if seasonID == 0 {
		season, err := s.repo.GetActiveSeason(ctx, db)
		if err != nil {
			if errors.Is(err, racedb.ErrNoActiveSeason) {
				return results.FailureResult[*racedb.Race, error](ErrNoActiveSeason), nil
			}
			return results.OperationResult[*racedb.Race, error]{}, fmt.Errorf("failed to load active season: %w", err)
		}
		seasonID = season.ID
	} else if _, err := s.repo.GetSeason(ctx, db, seasonID); err != nil {
		if errors.Is(err, racedb.ErrNotFound) {
			return results.FailureResult[*racedb.Race, error](ErrSeasonNotFound), nil
		}
		return results.OperationResult[*racedb.Race, error]{}, fmt.Errorf("failed to load season: %w", err)
	}

	race := &racedb.Race{
		SeasonID:    seasonID,
		Name:        strings.TrimSpace(req.Name),
		Country:     strings.TrimSpace(req.Country),
		RaceDate:    req.RaceDate,
		BetsOpenAt:  req.BetsOpenAt,
		BetsCloseAt: req.BetsCloseAt,
		Status:      racedomain.StatusScheduled,
	}
	if err := s.repo.CreateRace(ctx, db, race); err != nil {
		return results.OperationResult[*racedb.Race, error]{}, fmt.Errorf("failed to create race: %w", err)
	}
	return results.SuccessResult[*racedb.Race, error](race), nil
}

func validateSchedule(req ScheduleRaceRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSchedule)
	}
	if req.RaceDate.IsZero() {
		return fmt.Errorf("%w: race date is required", ErrInvalidSchedule)
	}
	if req.BetsOpenAt != nil && req.BetsCloseAt != nil && req.BetsCloseAt.Before(*req.BetsOpenAt) {
		return fmt.Errorf("%w: bets close before they open", ErrInvalidSchedule)
	}
	return nil
}

// ResolveTime accepts RFC 3339, "2006-01-02 15:04" in the race timezone, or
// English phrases such as "next sunday at 14:00".
func (s *RaceService) ResolveTime(expr string) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("%w: empty time", ErrInvalidSchedule)
	}
	loc := s.clock.Location()

	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", expr, loc); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(expr, s.clock.Now().In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("%w: could not understand %q", ErrInvalidSchedule, expr)
	}
	return r.Time.In(loc), nil
}
