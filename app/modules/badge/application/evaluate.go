package badgeservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

func (s *BadgeService) EvaluateAfterRace(ctx context.Context, userID, raceID int64) (int, error) {
	evaluateTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]badgedb.Achievement, error], error) {
		stats, err := s.repo.UserRaceStats(ctx, db, userID, raceID)
		if err != nil {
			if errors.Is(err, badgedb.ErrNotFound) {
				return results.SuccessResult[[]badgedb.Achievement, error](nil), nil
			}
			return results.OperationResult[[]badgedb.Achievement, error]{}, fmt.Errorf("failed to load race stats: %w", err)
		}

		candidates, err := s.repo.ListUnheld(ctx, db, userID, badgedomain.RaceKinds)
		if err != nil {
			return results.OperationResult[[]badgedb.Achievement, error]{}, fmt.Errorf("failed to list achievements: %w", err)
		}

		var granted []badgedb.Achievement
		for _, a := range candidates {
			rule, err := a.Rule()
			if err != nil {
				s.logger.WarnContext(ctx, "Skipping achievement with invalid rule",
					attr.Int64("achievement_id", a.ID),
					attr.Error(err),
				)
				continue
			}
			raceRule, ok := rule.(badgedomain.RaceRule)
			if !ok || !raceRule.Met(*stats) {
				continue
			}

			ok, err = s.repo.GrantOnce(ctx, db, &badgedb.UserAchievement{
				UserID:        userID,
				AchievementID: a.ID,
				RaceID:        &raceID,
			})
			if err != nil {
				return results.OperationResult[[]badgedb.Achievement, error]{}, fmt.Errorf("failed to grant %s: %w", a.Code, err)
			}
			if ok {
				granted = append(granted, a)
			}
		}
		return results.SuccessResult[[]badgedb.Achievement, error](granted), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "EvaluateAfterRace", strconv.FormatInt(userID, 10),
		func(ctx context.Context) (results.OperationResult[[]badgedb.Achievement, error], error) {
			return telemetry.RunInTx(ctx, s.db, evaluateTx)
		})
	granted, err := telemetry.Unwrap(result, err)
	if err != nil {
		return 0, err
	}

	for _, a := range granted {
		s.announce(ctx, userID, a)
	}
	return len(granted), nil
}

func (s *BadgeService) announce(ctx context.Context, userID int64, a badgedb.Achievement) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, notifyservice.Notification{
		Audience: notifyservice.Users(userID),
		Title:    "Achievement unlocked: " + a.Name,
		Body:     a.Icon + " " + a.Description,
		DeepLink: "/profile/achievements",
	})
}
