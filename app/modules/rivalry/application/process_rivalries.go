package rivalryservice

import (
	"context"
	"fmt"
	"strconv"

	rivalrydomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/domain"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// ProcessRivalries finishes every ACCEPTED rivalry of the race. A missing
// bet counts as zero points. PENDING and DECLINED rivalries are left alone.
func (s *RivalryService) ProcessRivalries(ctx context.Context, raceID int64) (int, error) {
	processTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		accepted, err := s.repo.ListByRaceAndStatus(ctx, db, raceID, rivalrydomain.StatusAccepted)
		if err != nil {
			return results.OperationResult[int, error]{}, fmt.Errorf("failed to list accepted rivalries: %w", err)
		}
		if len(accepted) == 0 {
			return results.SuccessResult[int, error](0), nil
		}

		var users []int64
		for i := range accepted {
			users = append(users, accepted[i].Participants()...)
		}
		points, err := s.repo.RacePoints(ctx, db, raceID, users)
		if err != nil {
			return results.OperationResult[int, error]{}, fmt.Errorf("failed to load race points: %w", err)
		}

		finished := 0
		for _, rv := range accepted {
			outcome := rivalrydomain.Resolve(rv.ChallengerID, points[rv.ChallengerID], rv.OpponentID, points[rv.OpponentID])
			ok, err := s.repo.Finish(ctx, db, rv.ID, outcome)
			if err != nil {
				return results.OperationResult[int, error]{}, fmt.Errorf("failed to finish rivalry %d: %w", rv.ID, err)
			}
			if ok {
				finished++
			}
		}
		return results.SuccessResult[int, error](finished), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "ProcessRivalries", strconv.FormatInt(raceID, 10),
		func(ctx context.Context) (results.OperationResult[int, error], error) {
			return telemetry.RunInTx(ctx, s.db, processTx)
		})
	finished, err := telemetry.Unwrap(result, err)
	if err != nil {
		return 0, err
	}

	if finished > 0 {
		s.logger.InfoContext(ctx, "Rivalries resolved", attr.RaceID(raceID), attr.Int("finished", finished))
	}
	return finished, nil
}
