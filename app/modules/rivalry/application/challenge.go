package rivalryservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	rivalrydomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/domain"
	rivalrydb "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

type challengeResult struct {
	rivalry  *rivalrydb.Rivalry
	raceName string
}

// Challenge opens a PENDING rivalry on the next OPEN or SCHEDULED race.
func (s *RivalryService) Challenge(ctx context.Context, challengerID, opponentID int64) (*rivalrydb.Rivalry, error) {
	challengeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[challengeResult, error], error) {
		if challengerID == opponentID {
			return results.FailureResult[challengeResult, error](ErrSelfChallenge), nil
		}

		race, err := s.races.NextChallengeableRace(ctx, db)
		if err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return results.FailureResult[challengeResult, error](ErrNoChallengeableRace), nil
			}
			return results.OperationResult[challengeResult, error]{}, fmt.Errorf("failed to find next race: %w", err)
		}

		exists, err := s.repo.ExistsForPair(ctx, db, race.ID, challengerID, opponentID)
		if err != nil {
			return results.OperationResult[challengeResult, error]{}, fmt.Errorf("failed to check existing challenge: %w", err)
		}
		if exists {
			return results.FailureResult[challengeResult, error](ErrDuplicateChallenge), nil
		}

		rv := &rivalrydb.Rivalry{
			ChallengerID: challengerID,
			OpponentID:   opponentID,
			RaceID:       race.ID,
			Status:       rivalrydomain.StatusPending,
		}
		if err := s.repo.CreateRivalry(ctx, db, rv); err != nil {
			return results.OperationResult[challengeResult, error]{}, fmt.Errorf("failed to create rivalry: %w", err)
		}
		return results.SuccessResult[challengeResult, error](challengeResult{rivalry: rv, raceName: race.Name}), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "Challenge", strconv.FormatInt(challengerID, 10),
		func(ctx context.Context) (results.OperationResult[challengeResult, error], error) {
			return telemetry.RunInTx(ctx, s.db, challengeTx)
		})
	created, err := telemetry.Unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, opponentID, "New challenge", "You were challenged for the "+created.raceName)
	return created.rivalry, nil
}

// Accept moves a PENDING rivalry addressed to userID to ACCEPTED.
func (s *RivalryService) Accept(ctx context.Context, rivalryID, userID int64) (*rivalrydb.Rivalry, error) {
	rv, err := s.respond(ctx, "Accept", rivalryID, userID, rivalrydomain.StatusAccepted)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, rv.ChallengerID, "Challenge accepted", "Your challenge was accepted. May the best predictor win.")
	return rv, nil
}

// Decline moves a PENDING rivalry addressed to userID to DECLINED.
func (s *RivalryService) Decline(ctx context.Context, rivalryID, userID int64) (*rivalrydb.Rivalry, error) {
	return s.respond(ctx, "Decline", rivalryID, userID, rivalrydomain.StatusDeclined)
}

func (s *RivalryService) respond(ctx context.Context, op string, rivalryID, userID int64, to rivalrydomain.Status) (*rivalrydb.Rivalry, error) {
	respondTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*rivalrydb.Rivalry, error], error) {
		rv, err := s.repo.GetRivalry(ctx, db, rivalryID)
		if err != nil {
			if errors.Is(err, rivalrydb.ErrNotFound) {
				return results.FailureResult[*rivalrydb.Rivalry, error](ErrRivalryNotFound), nil
			}
			return results.OperationResult[*rivalrydb.Rivalry, error]{}, fmt.Errorf("failed to load rivalry: %w", err)
		}
		if rv.OpponentID != userID {
			return results.FailureResult[*rivalrydb.Rivalry, error](ErrNotOpponent), nil
		}
		if rv.Status != rivalrydomain.StatusPending {
			return results.FailureResult[*rivalrydb.Rivalry, error](ErrNotPending), nil
		}

		ok, err := s.repo.TransitionStatus(ctx, db, rivalryID, rivalrydomain.StatusPending, to)
		if err != nil {
			return results.OperationResult[*rivalrydb.Rivalry, error]{}, fmt.Errorf("failed to update rivalry: %w", err)
		}
		if !ok {
			return results.FailureResult[*rivalrydb.Rivalry, error](ErrNotPending), nil
		}
		rv.Status = to
		return results.SuccessResult[*rivalrydb.Rivalry, error](rv), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), op, strconv.FormatInt(rivalryID, 10),
		func(ctx context.Context) (results.OperationResult[*rivalrydb.Rivalry, error], error) {
			return telemetry.RunInTx(ctx, s.db, respondTx)
		})
	return telemetry.Unwrap(result, err)
}

func (s *RivalryService) History(ctx context.Context, userID int64, finishedOnly bool) ([]rivalrydb.Rivalry, error) {
	var status *rivalrydomain.Status
	if finishedOnly {
		finished := rivalrydomain.StatusFinished
		status = &finished
	}
	return s.repo.ListForUser(ctx, nil, userID, status)
}

func (s *RivalryService) notify(ctx context.Context, userID int64, title, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notifyservice.Notification{
		Audience: notifyservice.Users(userID),
		Title:    title,
		Body:     body,
		DeepLink: "/rivals",
	})
}
