package raceservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
)

// TickSummary counts what a single tick did.
type TickSummary struct {
	Opened  int
	Closed  int
	Alerts  int
	Skipped int
}

// ProcessTick runs the opening pass, the closing pass and the alert pass, in
// that order. A race whose open and close deadlines both passed is opened
// and closed in the same tick. Per-race failures do not stop the tick; they
// are joined into the returned error and retried on the next tick.
func (s *RaceService) ProcessTick(ctx context.Context) (TickSummary, error) {
	now := s.clock.Now().In(s.clock.Location())

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "ProcessTick", now.Format(time.RFC3339),
		func(ctx context.Context) (results.OperationResult[TickSummary, error], error) {
			summary, err := s.processTick(ctx, now)
			if err != nil {
				return results.OperationResult[TickSummary, error]{Success: &summary}, err
			}
			return results.SuccessResult[TickSummary, error](summary), nil
		})
	if result.Success != nil {
		return *result.Success, err
	}
	return TickSummary{}, err
}

func (s *RaceService) processTick(ctx context.Context, now time.Time) (TickSummary, error) {
	var summary TickSummary
	var errs []error

	toOpen, err := s.repo.ListDueToOpen(ctx, nil, now)
	if err != nil {
		return summary, fmt.Errorf("failed to list races due to open: %w", err)
	}
	for i := range toOpen {
		moved, err := s.advance(ctx, &toOpen[i], racedomain.StatusOpen, now)
		switch {
		case err != nil:
			errs = append(errs, err)
		case moved:
			summary.Opened++
		default:
			summary.Skipped++
		}
	}

	toClose, err := s.repo.ListDueToClose(ctx, nil, now)
	if err != nil {
		return summary, errors.Join(append(errs, fmt.Errorf("failed to list races due to close: %w", err))...)
	}
	for i := range toClose {
		moved, err := s.advance(ctx, &toClose[i], racedomain.StatusClosed, now)
		switch {
		case err != nil:
			errs = append(errs, err)
		case moved:
			summary.Closed++
		default:
			summary.Skipped++
		}
	}

	open, err := s.repo.ListOpenWithDeadline(ctx, nil)
	if err != nil {
		return summary, errors.Join(append(errs, fmt.Errorf("failed to list open races: %w", err))...)
	}
	for i := range open {
		sent, err := s.sendDueAlerts(ctx, &open[i], now)
		summary.Alerts += sent
		if err != nil {
			errs = append(errs, err)
		}
	}

	if summary.Opened+summary.Closed+summary.Alerts > 0 {
		s.logger.InfoContext(ctx, "Race tick applied changes",
			attr.Int("opened", summary.Opened),
			attr.Int("closed", summary.Closed),
			attr.Int("alerts", summary.Alerts),
			attr.Int("skipped", summary.Skipped),
		)
	}

	return summary, errors.Join(errs...)
}

// advance moves race one phase forward under the race lock. It reports false
// without error when the race is locked by a scorer or was already moved by
// another worker.
func (s *RaceService) advance(ctx context.Context, race *racedb.Race, to racedomain.Status, now time.Time) (bool, error) {
	next, due := racedomain.NextTransition(race.Schedule(), now)
	if !due || next != to {
		return false, nil
	}

	release, err := s.locker.TryAcquire(ctx, lock.RaceKey(race.ID), s.lockTTL)
	if errors.Is(err, lock.ErrHeld) {
		s.logger.InfoContext(ctx, "Race locked, deferring phase change to next tick",
			attr.RaceID(race.ID),
			attr.String("target_status", to.String()),
		)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("race %d: failed to acquire lock: %w", race.ID, err)
	}
	defer s.release(ctx, race.ID, release)

	applied, err := s.repo.TransitionStatus(ctx, nil, race.ID, race.Status, to)
	if err != nil {
		return false, fmt.Errorf("race %d: %w", race.ID, err)
	}
	if !applied {
		return false, nil
	}
	from := race.Status
	race.Status = to

	s.logger.InfoContext(ctx, "Race phase changed",
		attr.RaceID(race.ID),
		attr.String("from", from.String()),
		attr.String("to", to.String()),
	)

	switch to {
	case racedomain.StatusOpen:
		s.notify(ctx, race.ID, betsOpenedNotification(race))
	case racedomain.StatusClosed:
		s.notify(ctx, race.ID, betsClosedNotification(race))
	}
	return true, nil
}

// sendDueAlerts flips each due alert flag before broadcasting, so a crash
// between the two loses the alert rather than sending it twice.
func (s *RaceService) sendDueAlerts(ctx context.Context, race *racedb.Race, now time.Time) (int, error) {
	sent := 0
	for _, alert := range racedomain.DueAlerts(race.AlertState(), now) {
		marked, err := s.repo.MarkAlertSent(ctx, nil, race.ID, alert)
		if err != nil {
			return sent, fmt.Errorf("race %d: %w", race.ID, err)
		}
		if !marked {
			continue
		}
		s.logger.InfoContext(ctx, "Sending betting deadline alert",
			attr.RaceID(race.ID),
			attr.String("alert", string(alert)),
			attr.Float64("minutes_left", racedomain.MinutesUntil(*race.BetsCloseAt, now)),
		)
		s.notify(ctx, race.ID, alertNotification(race, alert))
		sent++
	}
	return sent, nil
}

func (s *RaceService) release(ctx context.Context, raceID int64, release lock.Release) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.WarnContext(ctx, "Failed to release race lock",
			attr.RaceID(raceID),
			attr.Error(err),
		)
	}
}
