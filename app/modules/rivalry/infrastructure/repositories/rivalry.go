package rivalrydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	rivalrydomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/domain"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new rivalry repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) CreateRivalry(ctx context.Context, db bun.IDB, rv *Rivalry) error {
	if _, err := r.resolveDB(db).NewInsert().Model(rv).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("rivalrydb.CreateRivalry: %w", err)
	}
	return nil
}

func (r *Impl) GetRivalry(ctx context.Context, db bun.IDB, rivalryID int64) (*Rivalry, error) {
	rv := new(Rivalry)
	err := r.resolveDB(db).NewSelect().
		Model(rv).
		Where("rv.id = ?", rivalryID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rivalrydb.GetRivalry: %w", err)
	}
	return rv, nil
}

func (r *Impl) ExistsForPair(ctx context.Context, db bun.IDB, raceID, userA, userB int64) (bool, error) {
	exists, err := r.resolveDB(db).NewSelect().
		Model((*Rivalry)(nil)).
		Where("rv.race_id = ?", raceID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("rv.challenger_id = ? AND rv.opponent_id = ?", userA, userB).
				WhereOr("rv.challenger_id = ? AND rv.opponent_id = ?", userB, userA)
		}).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("rivalrydb.ExistsForPair: %w", err)
	}
	return exists, nil
}

func (r *Impl) ListByRaceAndStatus(ctx context.Context, db bun.IDB, raceID int64, status rivalrydomain.Status) ([]Rivalry, error) {
	var out []Rivalry
	err := r.resolveDB(db).NewSelect().
		Model(&out).
		Where("rv.race_id = ?", raceID).
		Where("rv.status = ?", status).
		Order("rv.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rivalrydb.ListByRaceAndStatus: %w", err)
	}
	return out, nil
}

func (r *Impl) ListForUser(ctx context.Context, db bun.IDB, userID int64, status *rivalrydomain.Status) ([]Rivalry, error) {
	var out []Rivalry
	q := r.resolveDB(db).NewSelect().
		Model(&out).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("rv.challenger_id = ?", userID).WhereOr("rv.opponent_id = ?", userID)
		})
	if status != nil {
		q = q.Where("rv.status = ?", *status)
	}
	if err := q.OrderExpr("rv.created_at DESC, rv.id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("rivalrydb.ListForUser: %w", err)
	}
	return out, nil
}

func (r *Impl) RacePoints(ctx context.Context, db bun.IDB, raceID int64, userIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		UserID int64 `bun:"user_id"`
		Points int   `bun:"points"`
	}
	err := r.resolveDB(db).NewSelect().
		TableExpr("bets AS b").
		Column("b.user_id", "b.points").
		Where("b.race_id = ?", raceID).
		Where("b.user_id IN (?)", bun.In(userIDs)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("rivalrydb.RacePoints: %w", err)
	}
	for _, row := range rows {
		out[row.UserID] = row.Points
	}
	return out, nil
}

func (r *Impl) TransitionStatus(ctx context.Context, db bun.IDB, rivalryID int64, from, to rivalrydomain.Status) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("rivalrydb.TransitionStatus: illegal transition %s -> %s", from, to)
	}
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Rivalry)(nil)).
		Set("status = ?", to).
		Set("updated_at = current_timestamp").
		Where("id = ?", rivalryID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("rivalrydb.TransitionStatus: %w", err)
	}
	return applied(res)
}

func (r *Impl) Finish(ctx context.Context, db bun.IDB, rivalryID int64, outcome rivalrydomain.Outcome) (bool, error) {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Rivalry)(nil)).
		Set("status = ?", rivalrydomain.StatusFinished).
		Set("winner_id = ?", outcome.WinnerID).
		Set("margin = ?", outcome.Margin).
		Set("updated_at = current_timestamp").
		Where("id = ?", rivalryID).
		Where("status = ?", rivalrydomain.StatusAccepted).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("rivalrydb.Finish: %w", err)
	}
	return applied(res)
}

func applied(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
