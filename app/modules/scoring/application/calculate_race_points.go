package scoringservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	scoringdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// RaceScoringSummary reports what one scoring run did.
type RaceScoringSummary struct {
	RaceID            int64
	SeasonID          int64
	Processed         int
	Reversed          int
	PointsAwarded     int
	BadgesGranted     int
	RivalriesResolved int
}

type raceScoringResult = results.OperationResult[*RaceScoringSummary, error]

func (s *ScoringService) CalculateRacePoints(ctx context.Context, raceID int64) (*RaceScoringSummary, error) {
	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "CalculateRacePoints", strconv.FormatInt(raceID, 10),
		func(ctx context.Context) (raceScoringResult, error) {
			return s.calculateRacePoints(ctx, raceID)
		})
	if err != nil {
		if result.Success != nil {
			return *result.Success, err
		}
		return nil, err
	}
	return telemetry.Unwrap(result, nil)
}

func (s *ScoringService) calculateRacePoints(ctx context.Context, raceID int64) (raceScoringResult, error) {
	release, err := s.lockRace(ctx, raceID)
	if err != nil {
		if errors.Is(err, ErrRecalculationInProgress) {
			return results.FailureResult[*RaceScoringSummary, error](ErrRecalculationInProgress), nil
		}
		return raceScoringResult{}, fmt.Errorf("failed to lock race: %w", err)
	}
	defer s.unlockRace(ctx, raceID, release)

	ctx, cancel := context.WithTimeout(ctx, s.lockTTL)
	defer cancel()

	race, err := s.races.GetRaceWithResult(ctx, nil, raceID)
	if err != nil {
		if errors.Is(err, racedb.ErrNotFound) {
			return results.FailureResult[*RaceScoringSummary, error](ErrRaceNotFound), nil
		}
		return raceScoringResult{}, fmt.Errorf("failed to load race: %w", err)
	}
	if race.Result == nil {
		return results.FailureResult[*RaceScoringSummary, error](ErrResultMissing), nil
	}

	summary := &RaceScoringSummary{RaceID: race.ID, SeasonID: race.SeasonID}

	bets, err := s.rescore(ctx, race, summary)
	if err != nil {
		if errors.Is(err, ErrRecalculationInProgress) {
			return results.FailureResult[*RaceScoringSummary, error](ErrRecalculationInProgress), nil
		}
		return raceScoringResult{}, err
	}

	if err := s.runHooks(ctx, race, bets, summary); err != nil {
		return raceScoringResult{Success: &summary}, err
	}

	s.logger.InfoContext(ctx, "Race scoring completed",
		attr.RaceID(raceID),
		attr.SeasonID(race.SeasonID),
		attr.Int("processed", summary.Processed),
		attr.Int("reversed", summary.Reversed),
		attr.Int("points_awarded", summary.PointsAwarded),
		attr.Int("badges_granted", summary.BadgesGranted),
		attr.Int("rivalries_resolved", summary.RivalriesResolved),
	)
	return results.SuccessResult[*RaceScoringSummary, error](summary), nil
}

// rescore runs the rollback and recompute phases under the season ledger
// lock. Each phase commits before the next one reads. A crash in between
// leaves bets at zero, which the next run handles like any other state.
func (s *ScoringService) rescore(ctx context.Context, race *racedb.Race, summary *RaceScoringSummary) ([]scoringdb.Bet, error) {
	release, err := s.lockLedger(ctx, race.SeasonID)
	if err != nil {
		if errors.Is(err, ErrRecalculationInProgress) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to lock season ledger: %w", err)
	}
	defer s.unlockLedger(ctx, race.SeasonID, release)

	reversed, err := telemetry.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]scoringdb.Bet, error], error) {
		return s.reversePoints(ctx, db, race.ID, summary)
	})
	bets, err := telemetry.Unwrap(reversed, err)
	if err != nil {
		return nil, fmt.Errorf("rollback phase: %w", err)
	}

	if _, err := telemetry.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		return s.applyPoints(ctx, db, bets, race.Result, summary)
	}); err != nil {
		return nil, fmt.Errorf("recompute phase: %w", err)
	}
	return bets, nil
}

// reversePoints debits every scored bet from its snapshot team and zeroes
// it. The bets are returned as read so the recompute phase credits the same
// snapshot teams.
func (s *ScoringService) reversePoints(ctx context.Context, db bun.IDB, raceID int64, summary *RaceScoringSummary) (results.OperationResult[[]scoringdb.Bet, error], error) {
	bets, err := s.bets.ListByRace(ctx, db, raceID)
	if err != nil {
		return results.OperationResult[[]scoringdb.Bet, error]{}, fmt.Errorf("failed to list bets: %w", err)
	}

	for i := range bets {
		bet := &bets[i]
		if bet.Points == 0 {
			continue
		}
		if bet.TeamID != nil {
			if err := s.ledger.Debit(ctx, db, *bet.TeamID, bet.Points); err != nil {
				return results.OperationResult[[]scoringdb.Bet, error]{}, err
			}
		}
		if err := s.bets.SetPoints(ctx, db, bet.ID, 0); err != nil {
			return results.OperationResult[[]scoringdb.Bet, error]{}, fmt.Errorf("failed to zero bet %d: %w", bet.ID, err)
		}
		bet.Points = 0
		summary.Reversed++
	}
	return results.SuccessResult[[]scoringdb.Bet, error](bets), nil
}

func (s *ScoringService) applyPoints(ctx context.Context, db bun.IDB, bets []scoringdb.Bet, result *racedb.RaceResult, summary *RaceScoringSummary) (results.OperationResult[int, error], error) {
	official := result.Picks()
	for i := range bets {
		bet := &bets[i]
		points := scoringdomain.Score(bet.Picks(), official)

		if err := s.bets.SetPoints(ctx, db, bet.ID, points); err != nil {
			return results.OperationResult[int, error]{}, fmt.Errorf("failed to score bet %d: %w", bet.ID, err)
		}
		if bet.TeamID != nil {
			if err := s.ledger.Credit(ctx, db, *bet.TeamID, points); err != nil {
				return results.OperationResult[int, error]{}, err
			}
		}
		bet.Points = points
		summary.Processed++
		summary.PointsAwarded += points
	}
	return results.SuccessResult[int, error](summary.Processed), nil
}

// runHooks performs the post-scoring side effects. A failing hook does not
// stop the others; the race is still marked finished and the errors are
// returned together so the run is retried.
func (s *ScoringService) runHooks(ctx context.Context, race *racedb.Race, bets []scoringdb.Bet, summary *RaceScoringSummary) error {
	var errs []error

	if s.hooks.Badges != nil {
		for i := range bets {
			granted, err := s.hooks.Badges.EvaluateAfterRace(ctx, bets[i].UserID, race.ID)
			if err != nil {
				errs = append(errs, fmt.Errorf("badges for user %d: %w", bets[i].UserID, err))
				continue
			}
			summary.BadgesGranted += granted
		}
	}

	if s.hooks.Rivalries != nil {
		resolved, err := s.hooks.Rivalries.ProcessRivalries(ctx, race.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("rivalries: %w", err))
		}
		summary.RivalriesResolved = resolved
	}

	if err := s.races.MarkFinished(ctx, nil, race.ID); err != nil {
		return errors.Join(append(errs, fmt.Errorf("failed to mark race finished: %w", err))...)
	}

	if s.hooks.Leaderboard != nil {
		if err := s.hooks.Leaderboard.RefreshLeaderboard(ctx, race.SeasonID); err != nil {
			errs = append(errs, fmt.Errorf("leaderboard: %w", err))
		}
	}

	if s.hooks.Notifier != nil {
		s.hooks.Notifier.Notify(ctx, notifyservice.Notification{
			Audience: notifyservice.Everyone(),
			Title:    "Chequered flag: " + race.Name,
			Body:     "The official result is in and points have been calculated. Check your position!",
			DeepLink: "/ranking",
		})
	}

	return errors.Join(errs...)
}
