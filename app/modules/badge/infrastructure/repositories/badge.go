package badgedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new badge repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) CreateAchievement(ctx context.Context, db bun.IDB, a *Achievement) error {
	if _, err := r.resolveDB(db).NewInsert().Model(a).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("badgedb.CreateAchievement: %w", err)
	}
	return nil
}

func (r *Impl) GetAchievementByCode(ctx context.Context, db bun.IDB, code string) (*Achievement, error) {
	a := new(Achievement)
	err := r.resolveDB(db).NewSelect().
		Model(a).
		Where("a.code = ?", code).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("badgedb.GetAchievementByCode: %w", err)
	}
	return a, nil
}

func (r *Impl) ListAchievements(ctx context.Context, db bun.IDB) ([]Achievement, error) {
	var out []Achievement
	if err := r.resolveDB(db).NewSelect().Model(&out).Order("a.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("badgedb.ListAchievements: %w", err)
	}
	return out, nil
}

func (r *Impl) ListByKinds(ctx context.Context, db bun.IDB, kinds []badgedomain.RuleKind) ([]Achievement, error) {
	var out []Achievement
	err := r.resolveDB(db).NewSelect().
		Model(&out).
		Where("a.rule_type IN (?)", bun.In(kinds)).
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("badgedb.ListByKinds: %w", err)
	}
	return out, nil
}

func (r *Impl) ListUnheld(ctx context.Context, db bun.IDB, userID int64, kinds []badgedomain.RuleKind) ([]Achievement, error) {
	idb := r.resolveDB(db)
	held := idb.NewSelect().
		Model((*UserAchievement)(nil)).
		Column("ua.achievement_id").
		Where("ua.user_id = ?", userID)

	var out []Achievement
	err := idb.NewSelect().
		Model(&out).
		Where("a.rule_type IN (?)", bun.In(kinds)).
		Where("a.id NOT IN (?)", held).
		Order("a.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("badgedb.ListUnheld: %w", err)
	}
	return out, nil
}

// Hit counts compare every bet of the user against its race's result; an
// unset pick is NULL and never matches.
const userRaceStatsQuery = `
SELECT
	cur.points AS race_points,
	(SELECT COALESCE(SUM(b.points), 0) FROM bets AS b WHERE b.user_id = cur.user_id) AS total_points,
	(SELECT COUNT(*) FROM bets AS b JOIN race_results AS rr ON rr.race_id = b.race_id
		WHERE b.user_id = cur.user_id AND b.pole_driver_id = rr.pole_driver_id) AS pole_hits,
	(SELECT COUNT(*) FROM bets AS b JOIN race_results AS rr ON rr.race_id = b.race_id
		WHERE b.user_id = cur.user_id AND b.winning_team_id = rr.winning_team_id) AS winner_hits,
	(SELECT COUNT(*) FROM bets AS b JOIN race_results AS rr ON rr.race_id = b.race_id
		WHERE b.user_id = cur.user_id AND b.dotd_driver_id = rr.dotd_driver_id) AS dotd_hits,
	(SELECT COUNT(*) FROM bets AS b WHERE b.user_id = cur.user_id) AS races_participated
FROM bets AS cur
JOIN race_results AS res ON res.race_id = cur.race_id
WHERE cur.user_id = ? AND cur.race_id = ?`

func (r *Impl) UserRaceStats(ctx context.Context, db bun.IDB, userID, raceID int64) (*badgedomain.RaceStats, error) {
	stats := new(badgedomain.RaceStats)
	if err := r.resolveDB(db).NewRaw(userRaceStatsQuery, userID, raceID).Scan(ctx, stats); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("badgedb.UserRaceStats: %w", err)
	}
	return stats, nil
}

func (r *Impl) GrantOnce(ctx context.Context, db bun.IDB, grant *UserAchievement) (bool, error) {
	res, err := r.resolveDB(db).NewInsert().
		Model(grant).
		On("CONFLICT DO NOTHING").
		Returning("id").
		Exec(ctx)
	if err != nil {
		// A skipped insert returns no row to scan.
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("badgedb.GrantOnce: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("badgedb.GrantOnce: %w", err)
	}
	return n > 0, nil
}

func (r *Impl) ListUserAchievements(ctx context.Context, db bun.IDB, userID int64, unseenOnly bool) ([]UserAchievement, error) {
	var out []UserAchievement
	q := r.resolveDB(db).NewSelect().
		Model(&out).
		Relation("Achievement").
		Where("ua.user_id = ?", userID)
	if unseenOnly {
		q = q.Where("ua.seen = FALSE")
	}
	if err := q.Order("ua.earned_at ASC", "ua.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("badgedb.ListUserAchievements: %w", err)
	}
	return out, nil
}

func (r *Impl) MarkSeen(ctx context.Context, db bun.IDB, userID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.resolveDB(db).NewUpdate().
		Model((*UserAchievement)(nil)).
		Set("seen = TRUE").
		Where("ua.user_id = ?", userID).
		Where("ua.id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("badgedb.MarkSeen: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("badgedb.MarkSeen: %w", err)
	}
	return int(n), nil
}
