package scoringservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	scoringdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// PlaceBet writes the user's prediction for a race. The bet's team snapshot
// is re-taken on every write. Bets are accepted until the close deadline,
// measured in the civil timezone, and never once the race is finished.
func (s *ScoringService) PlaceBet(ctx context.Context, userID, raceID int64, picks racedomain.Picks) (*scoringdb.Bet, error) {
	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "PlaceBet", strconv.FormatInt(raceID, 10),
		func(ctx context.Context) (results.OperationResult[*scoringdb.Bet, error], error) {
			if err := scoringdomain.ValidateBet(picks); err != nil {
				return results.FailureResult[*scoringdb.Bet, error](fmt.Errorf("%w: %w", ErrInvalidBet, err)), nil
			}

			release, err := s.lockRace(ctx, raceID)
			if err != nil {
				if errors.Is(err, ErrRecalculationInProgress) {
					return results.FailureResult[*scoringdb.Bet, error](ErrRecalculationInProgress), nil
				}
				return results.OperationResult[*scoringdb.Bet, error]{}, fmt.Errorf("failed to lock race: %w", err)
			}
			defer s.unlockRace(ctx, raceID, release)

			return telemetry.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[*scoringdb.Bet, error], error) {
				return s.placeBetLogic(ctx, db, userID, raceID, picks)
			})
		})
	return telemetry.Unwrap(result, err)
}

func (s *ScoringService) placeBetLogic(ctx context.Context, db bun.IDB, userID, raceID int64, picks racedomain.Picks) (results.OperationResult[*scoringdb.Bet, error], error) {
	race, err := s.races.GetRace(ctx, db, raceID)
	if err != nil {
		if errors.Is(err, racedb.ErrNotFound) {
			return results.FailureResult[*scoringdb.Bet, error](ErrRaceNotFound), nil
		}
		return results.OperationResult[*scoringdb.Bet, error]{}, fmt.Errorf("failed to load race: %w", err)
	}

	now := s.clock.Now().In(s.clock.Location())
	switch {
	case race.Status == racedomain.StatusFinished:
		return results.FailureResult[*scoringdb.Bet, error](ErrRaceFinished), nil
	case race.Status == racedomain.StatusClosed, !racedomain.AcceptsBets(race.Schedule(), now):
		return results.FailureResult[*scoringdb.Bet, error](ErrBettingClosed), nil
	}

	var teamID *int64
	if s.teams != nil {
		teamID, err = s.teams.TeamIDForUser(ctx, db, race.SeasonID, userID)
		if err != nil {
			return results.OperationResult[*scoringdb.Bet, error]{}, err
		}
	}

	existing, err := s.bets.GetBet(ctx, db, userID, raceID)
	if err != nil && !errors.Is(err, scoringdb.ErrNotFound) {
		return results.OperationResult[*scoringdb.Bet, error]{}, fmt.Errorf("failed to load bet: %w", err)
	}
	if existing != nil && existing.Points > 0 && !sameTeam(existing.TeamID, teamID) {
		// Points already attributed move with the snapshot.
		if err := s.moveAttribution(ctx, db, existing.Points, existing.TeamID, teamID); err != nil {
			return results.OperationResult[*scoringdb.Bet, error]{}, err
		}
	}

	bet := &scoringdb.Bet{UserID: userID, RaceID: raceID, TeamID: teamID}
	bet.SetPicks(picks)
	if err := s.bets.UpsertBet(ctx, db, bet); err != nil {
		return results.OperationResult[*scoringdb.Bet, error]{}, fmt.Errorf("failed to store bet: %w", err)
	}

	s.logger.InfoContext(ctx, "Bet placed",
		attr.UserID(userID),
		attr.RaceID(raceID),
		attr.Bool("update", existing != nil),
		attr.Any("team_id", teamID),
	)
	return results.SuccessResult[*scoringdb.Bet, error](bet), nil
}

func (s *ScoringService) moveAttribution(ctx context.Context, db bun.IDB, points int, from, to *int64) error {
	if from != nil {
		if err := s.ledger.Debit(ctx, db, *from, points); err != nil {
			return err
		}
	}
	if to != nil {
		if err := s.ledger.Credit(ctx, db, *to, points); err != nil {
			return err
		}
	}
	return nil
}

// GetBet returns the user's bet for the race.
func (s *ScoringService) GetBet(ctx context.Context, userID, raceID int64) (*scoringdb.Bet, error) {
	return s.bets.GetBet(ctx, nil, userID, raceID)
}

func sameTeam(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
