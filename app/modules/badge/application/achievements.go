package badgeservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
)

// CreateAchievement stores a new badge definition.
func (s *BadgeService) CreateAchievement(ctx context.Context, req CreateAchievementRequest) (*badgedb.Achievement, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*badgedb.Achievement, error], error) {
		code := strings.TrimSpace(req.Code)
		name := strings.TrimSpace(req.Name)
		if code == "" || name == "" {
			return results.FailureResult[*badgedb.Achievement, error](ErrInvalidAchievement), nil
		}
		if _, err := badgedomain.ParseRule(req.RuleType, req.Threshold); err != nil {
			return results.FailureResult[*badgedb.Achievement, error](fmt.Errorf("%w: %w", ErrInvalidAchievement, err)), nil
		}

		_, err := s.repo.GetAchievementByCode(ctx, db, code)
		switch {
		case err == nil:
			return results.FailureResult[*badgedb.Achievement, error](ErrDuplicateAchievement), nil
		case !errors.Is(err, badgedb.ErrNotFound):
			return results.OperationResult[*badgedb.Achievement, error]{}, fmt.Errorf("failed to check achievement code: %w", err)
		}

		a := &badgedb.Achievement{
			Code:        code,
			Name:        name,
			Description: req.Description,
			Icon:        req.Icon,
			Color:       req.Color,
			RuleType:    req.RuleType,
			Threshold:   req.Threshold,
		}
		if a.Icon == "" {
			a.Icon = "🏆"
		}
		if a.Color == "" {
			a.Color = "gold"
		}
		if err := s.repo.CreateAchievement(ctx, db, a); err != nil {
			return results.OperationResult[*badgedb.Achievement, error]{}, fmt.Errorf("failed to create achievement: %w", err)
		}
		return results.SuccessResult[*badgedb.Achievement, error](a), nil
	}

	result, err := telemetry.WithTelemetry(ctx, s.instruments(), "CreateAchievement", req.Code,
		func(ctx context.Context) (results.OperationResult[*badgedb.Achievement, error], error) {
			return telemetry.RunInTx(ctx, s.db, createTx)
		})
	return telemetry.Unwrap(result, err)
}

func (s *BadgeService) ListAchievements(ctx context.Context) ([]badgedb.Achievement, error) {
	return s.repo.ListAchievements(ctx, nil)
}

func (s *BadgeService) ListUserAchievements(ctx context.Context, userID int64, unseenOnly bool) ([]badgedb.UserAchievement, error) {
	return s.repo.ListUserAchievements(ctx, nil, userID, unseenOnly)
}

// MarkSeen flags grants as seen. Ids that belong to other users are ignored.
func (s *BadgeService) MarkSeen(ctx context.Context, userID int64, ids []int64) (int, error) {
	return s.repo.MarkSeen(ctx, nil, userID, ids)
}
