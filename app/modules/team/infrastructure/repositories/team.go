package teamdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new team repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) CreateTeam(ctx context.Context, db bun.IDB, team *Team) error {
	if _, err := r.resolveDB(db).NewInsert().Model(team).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("teamdb.CreateTeam: %w", err)
	}
	return nil
}

func (r *Impl) GetTeam(ctx context.Context, db bun.IDB, teamID int64) (*Team, error) {
	team := new(Team)
	err := r.resolveDB(db).NewSelect().
		Model(team).
		Where("t.id = ?", teamID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("teamdb.GetTeam: %w", err)
	}
	return team, nil
}

func (r *Impl) GetTeamForUpdate(ctx context.Context, db bun.IDB, teamID int64) (*Team, error) {
	team := new(Team)
	err := r.resolveDB(db).NewSelect().
		Model(team).
		Where("t.id = ?", teamID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("teamdb.GetTeamForUpdate: %w", err)
	}
	return team, nil
}

func (r *Impl) FindTeamForUser(ctx context.Context, db bun.IDB, seasonID, userID int64) (*Team, error) {
	team := new(Team)
	err := r.resolveDB(db).NewSelect().
		Model(team).
		Where("t.season_id = ?", seasonID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("t.captain_id = ?", userID).WhereOr("t.partner_id = ?", userID)
		}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("teamdb.FindTeamForUser: %w", err)
	}
	return team, nil
}

func (r *Impl) ListTeamsBySeason(ctx context.Context, db bun.IDB, seasonID int64) ([]Team, error) {
	var teams []Team
	err := r.resolveDB(db).NewSelect().
		Model(&teams).
		Where("t.season_id = ?", seasonID).
		OrderExpr("t.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("teamdb.ListTeamsBySeason: %w", err)
	}
	return teams, nil
}

func (r *Impl) SetPartner(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error) {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Team)(nil)).
		Set("partner_id = ?", userID).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Where("partner_id IS NULL").
		Where("captain_id <> ?", userID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("teamdb.SetPartner: %w", err)
	}
	return applied(res)
}

func (r *Impl) ClearPartner(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error) {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Team)(nil)).
		Set("partner_id = NULL").
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Where("partner_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("teamdb.ClearPartner: %w", err)
	}
	return applied(res)
}

func (r *Impl) AddPoints(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Team)(nil)).
		Set("total_points = total_points + ?", points).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("teamdb.AddPoints: %w", err)
	}
	return requireRow("teamdb.AddPoints", res)
}

func (r *Impl) SubtractPointsClamped(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Team)(nil)).
		Set("total_points = GREATEST(total_points - ?, 0)", points).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("teamdb.SubtractPointsClamped: %w", err)
	}
	return requireRow("teamdb.SubtractPointsClamped", res)
}

func (r *Impl) SumContributedPoints(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error) {
	var total int
	err := r.resolveDB(db).NewSelect().
		TableExpr("bets AS b").
		ColumnExpr("COALESCE(SUM(b.points), 0)").
		Where("b.user_id = ?", userID).
		Where("b.team_id = ?", teamID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("teamdb.SumContributedPoints: %w", err)
	}
	return total, nil
}

func (r *Impl) DetachBets(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error) {
	res, err := r.resolveDB(db).NewUpdate().
		TableExpr("bets").
		Set("team_id = NULL").
		Where("user_id = ?", userID).
		Where("team_id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("teamdb.DetachBets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("teamdb.DetachBets: %w", err)
	}
	return int(n), nil
}

func applied(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func requireRow(op string, res sql.Result) error {
	ok, err := applied(res)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, ErrNoRowsAffected)
	}
	return nil
}
