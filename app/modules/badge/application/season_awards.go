package badgeservice

import (
	"context"
	"fmt"
	"strconv"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

type seasonGrant struct {
	userID      int64
	achievement badgedb.Achievement
}

// ProcessSeasonEndAwards grants every ranking achievement to the holder of
// its position. Running it again for the same season grants nothing new.
func (s *BadgeService) ProcessSeasonEndAwards(ctx context.Context, seasonID int64) (int, error) {
	awardTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]seasonGrant, error], error) {
		achievements, err := s.repo.ListByKinds(ctx, db, badgedomain.SeasonKinds)
		if err != nil {
			return results.OperationResult[[]seasonGrant, error]{}, fmt.Errorf("failed to list ranking achievements: %w", err)
		}
		if len(achievements) == 0 {
			return results.SuccessResult[[]seasonGrant, error](nil), nil
		}

		standings, err := s.standings.ComputeStandings(ctx, seasonID)
		if err != nil {
			return results.OperationResult[[]seasonGrant, error]{}, fmt.Errorf("failed to compute standings: %w", err)
		}

		var granted []seasonGrant
		for _, a := range achievements {
			rule, err := a.Rule()
			if err != nil {
				s.logger.WarnContext(ctx, "Skipping achievement with invalid rule",
					attr.Int64("achievement_id", a.ID),
					attr.Error(err),
				)
				continue
			}
			seasonRule, ok := rule.(badgedomain.SeasonRule)
			if !ok {
				continue
			}

			for _, w := range seasonRule.Winners(standings) {
				ok, err := s.repo.GrantOnce(ctx, db, &badgedb.UserAchievement{
					UserID:        w.UserID,
					AchievementID: a.ID,
					TeamID:        w.TeamID,
					SeasonID:      &seasonID,
				})
				if err != nil {
					return results.OperationResult[[]seasonGrant, error]{}, fmt.Errorf("failed to grant %s: %w", a.Code, err)
				}
				if ok {
					granted = append(granted, seasonGrant{userID: w.UserID, achievement: a})
				}
			}
		}
		return results.SuccessResult[[]seasonGrant, error](granted), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "ProcessSeasonEndAwards", strconv.FormatInt(seasonID, 10),
		func(ctx context.Context) (results.OperationResult[[]seasonGrant, error], error) {
			return telemetry.RunInTx(ctx, s.db, awardTx)
		})
	granted, err := telemetry.Unwrap(result, err)
	if err != nil {
		return 0, err
	}

	for _, g := range granted {
		s.announce(ctx, g.userID, g.achievement)
	}
	s.logger.InfoContext(ctx, "Season awards granted",
		attr.SeasonID(seasonID),
		attr.Int("granted", len(granted)),
	)
	return len(granted), nil
}
