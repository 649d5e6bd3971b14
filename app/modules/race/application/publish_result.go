package raceservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// PublishResult replaces the race's official result and queues a scoring
// job for it. Submitting again replaces the stored result and queues a new
// job; scoring reverses the previous distribution before applying the new
// one. The race status is left for the scorer to move to FINISHED.
func (s *RaceService) PublishResult(ctx context.Context, raceID int64, picks racedomain.Picks) (*racedb.RaceResult, error) {
	publishTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedb.RaceResult, error], error) {
		return s.publishResultLogic(ctx, db, raceID, picks)
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "PublishResult", strconv.FormatInt(raceID, 10),
		func(ctx context.Context) (results.OperationResult[*racedb.RaceResult, error], error) {
			return telemetry.RunInTx(ctx, s.db, publishTx)
		})
	stored, err := telemetry.Unwrap(result, err)
	if err != nil {
		return nil, err
	}

	if s.queue == nil {
		return stored, nil
	}
	if err := s.queue.EnqueueRaceScoring(ctx, raceID, stored.ID); err != nil {
		s.logger.ErrorContext(ctx, "Result stored but scoring could not be queued",
			attr.RaceID(raceID),
			attr.Int64("result_id", stored.ID),
			attr.Error(err),
		)
		return stored, fmt.Errorf("failed to queue scoring for race %d: %w", raceID, err)
	}

	s.logger.InfoContext(ctx, "Race result published and scoring queued",
		attr.RaceID(raceID),
		attr.Int64("result_id", stored.ID),
	)
	return stored, nil
}

func (s *RaceService) publishResultLogic(ctx context.Context, db bun.IDB, raceID int64, picks racedomain.Picks) (results.OperationResult[*racedb.RaceResult, error], error) {
	if _, err := s.repo.GetRace(ctx, db, raceID); err != nil {
		if errors.Is(err, racedb.ErrNotFound) {
			return results.FailureResult[*racedb.RaceResult, error](ErrRaceNotFound), nil
		}
		return results.OperationResult[*racedb.RaceResult, error]{}, fmt.Errorf("failed to load race: %w", err)
	}

	row := racedb.NewRaceResult(raceID, picks)
	if err := s.repo.ReplaceResult(ctx, db, row); err != nil {
		return results.OperationResult[*racedb.RaceResult, error]{}, fmt.Errorf("failed to store result: %w", err)
	}
	return results.SuccessResult[*racedb.RaceResult, error](row), nil
}
