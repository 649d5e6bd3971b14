package rankingservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	rankingdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// RefreshLeaderboard rebuilds the season's cache. Calls for the same season
// are serialized; a caller waits for a running rebuild instead of racing it.
func (s *RankingService) RefreshLeaderboard(ctx context.Context, seasonID int64) error {
	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "RefreshLeaderboard", strconv.FormatInt(seasonID, 10),
		func(ctx context.Context) (results.OperationResult[rankingdomain.Standings, error], error) {
			release, err := lock.Acquire(ctx, s.locker, lock.SeasonRankingKey(seasonID), s.lockTTL, s.waitPolicy)
			if err != nil {
				if errors.Is(err, lock.ErrHeld) {
					return results.FailureResult[rankingdomain.Standings, error](ErrRankingBusy), nil
				}
				return results.OperationResult[rankingdomain.Standings, error]{}, fmt.Errorf("failed to lock season ranking: %w", err)
			}
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					s.logger.WarnContext(ctx, "Failed to release ranking lock", attr.SeasonID(seasonID), attr.Error(err))
				}
			}()

			return telemetry.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[rankingdomain.Standings, error], error) {
				standings, err := s.computeStandings(ctx, db, seasonID)
				if err != nil {
					return results.OperationResult[rankingdomain.Standings, error]{}, err
				}
				if err := s.repo.ReplaceSeason(ctx, db, seasonID, cacheRows(standings)); err != nil {
					return results.OperationResult[rankingdomain.Standings, error]{}, fmt.Errorf("failed to replace standings: %w", err)
				}
				return results.SuccessResult[rankingdomain.Standings, error](standings), nil
			})
		})
	standings, err := telemetry.Unwrap(result, err)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Leaderboard refreshed",
		attr.SeasonID(seasonID),
		attr.Int("drivers", len(standings.Drivers)),
		attr.Int("teams", len(standings.Teams)),
	)
	return nil
}

func (s *RankingService) ComputeStandings(ctx context.Context, seasonID int64) (rankingdomain.Standings, error) {
	return s.computeStandings(ctx, nil, seasonID)
}

func (s *RankingService) computeStandings(ctx context.Context, db bun.IDB, seasonID int64) (rankingdomain.Standings, error) {
	driverTotals, err := s.repo.DriverTotals(ctx, db, seasonID)
	if err != nil {
		return rankingdomain.Standings{}, fmt.Errorf("failed to sum driver points: %w", err)
	}
	teamTotals, err := s.repo.TeamTotals(ctx, db, seasonID)
	if err != nil {
		return rankingdomain.Standings{}, fmt.Errorf("failed to read team totals: %w", err)
	}

	members := make(map[int64]rankingdb.TeamTotal, len(teamTotals))
	totals := make([]rankingdomain.Total, len(teamTotals))
	for i, t := range teamTotals {
		members[t.TeamID] = t
		totals[i] = rankingdomain.Total{EntityID: t.TeamID, Points: t.TotalPoints}
	}

	ranked := rankingdomain.Rank(rankingdomain.CategoryTeam, totals)
	teams := make([]rankingdomain.TeamEntry, len(ranked))
	for i, e := range ranked {
		t := members[e.EntityID]
		teams[i] = rankingdomain.TeamEntry{Entry: e, CaptainID: t.CaptainID, PartnerID: t.PartnerID}
	}

	return rankingdomain.Standings{
		SeasonID: seasonID,
		Drivers:  rankingdomain.Rank(rankingdomain.CategoryDriver, driverTotals),
		Teams:    teams,
	}, nil
}

func cacheRows(s rankingdomain.Standings) []rankingdb.RankingCache {
	rows := make([]rankingdb.RankingCache, 0, len(s.Drivers)+len(s.Teams))
	for _, e := range s.Drivers {
		rows = append(rows, rankingdb.RankingCache{SeasonID: s.SeasonID, Category: e.Category, EntityID: e.EntityID, Points: e.Points, Position: e.Position})
	}
	for _, t := range s.Teams {
		rows = append(rows, rankingdb.RankingCache{SeasonID: s.SeasonID, Category: t.Category, EntityID: t.EntityID, Points: t.Points, Position: t.Position})
	}
	return rows
}
