package racedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new race repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetRace(ctx context.Context, db bun.IDB, raceID int64) (*Race, error) {
	race := new(Race)
	err := r.resolveDB(db).NewSelect().
		Model(race).
		Where("r.id = ?", raceID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("racedb.GetRace: %w", err)
	}
	return race, nil
}

func (r *Impl) GetRaceWithResult(ctx context.Context, db bun.IDB, raceID int64) (*Race, error) {
	race := new(Race)
	err := r.resolveDB(db).NewSelect().
		Model(race).
		Relation("Result").
		Where("r.id = ?", raceID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("racedb.GetRaceWithResult: %w", err)
	}
	// A LEFT JOIN with no match still allocates the relation.
	if race.Result != nil && race.Result.ID == 0 {
		race.Result = nil
	}
	return race, nil
}

func (r *Impl) CreateRace(ctx context.Context, db bun.IDB, race *Race) error {
	if race.Status == "" {
		race.Status = racedomain.StatusScheduled
	}
	if _, err := r.resolveDB(db).NewInsert().Model(race).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("racedb.CreateRace: %w", err)
	}
	return nil
}

func (r *Impl) ListDueToOpen(ctx context.Context, db bun.IDB, now time.Time) ([]Race, error) {
	var races []Race
	err := r.resolveDB(db).NewSelect().
		Model(&races).
		Where("r.status = ?", racedomain.StatusScheduled).
		Where("r.bets_open_at IS NOT NULL").
		Where("r.bets_open_at <= ?", now).
		OrderExpr("r.bets_open_at ASC, r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("racedb.ListDueToOpen: %w", err)
	}
	return races, nil
}

func (r *Impl) ListDueToClose(ctx context.Context, db bun.IDB, now time.Time) ([]Race, error) {
	var races []Race
	err := r.resolveDB(db).NewSelect().
		Model(&races).
		Where("r.status = ?", racedomain.StatusOpen).
		Where("r.bets_close_at IS NOT NULL").
		Where("r.bets_close_at <= ?", now).
		OrderExpr("r.bets_close_at ASC, r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("racedb.ListDueToClose: %w", err)
	}
	return races, nil
}

func (r *Impl) ListOpenWithDeadline(ctx context.Context, db bun.IDB) ([]Race, error) {
	var races []Race
	err := r.resolveDB(db).NewSelect().
		Model(&races).
		Where("r.status = ?", racedomain.StatusOpen).
		Where("r.bets_close_at IS NOT NULL").
		OrderExpr("r.bets_close_at ASC, r.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("racedb.ListOpenWithDeadline: %w", err)
	}
	return races, nil
}

func (r *Impl) NextChallengeableRace(ctx context.Context, db bun.IDB) (*Race, error) {
	race := new(Race)
	err := r.resolveDB(db).NewSelect().
		Model(race).
		Where("r.status IN (?)", bun.In([]racedomain.Status{racedomain.StatusOpen, racedomain.StatusScheduled})).
		OrderExpr("r.race_date ASC, r.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("racedb.NextChallengeableRace: %w", err)
	}
	return race, nil
}

func (r *Impl) TransitionStatus(ctx context.Context, db bun.IDB, raceID int64, from, to racedomain.Status) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, fmt.Errorf("racedb.TransitionStatus: illegal transition %s -> %s", from, to)
	}
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Race)(nil)).
		Set("status = ?", to).
		Set("updated_at = current_timestamp").
		Where("id = ?", raceID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("racedb.TransitionStatus: %w", err)
	}
	return applied(res)
}

func (r *Impl) MarkFinished(ctx context.Context, db bun.IDB, raceID int64) error {
	_, err := r.resolveDB(db).NewUpdate().
		Model((*Race)(nil)).
		Set("status = ?", racedomain.StatusFinished).
		Set("updated_at = current_timestamp").
		Where("id = ?", raceID).
		Where("status <> ?", racedomain.StatusFinished).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("racedb.MarkFinished: %w", err)
	}
	return nil
}

func (r *Impl) MarkAlertSent(ctx context.Context, db bun.IDB, raceID int64, alert racedomain.Alert) (bool, error) {
	var column string
	switch alert {
	case racedomain.AlertOneHour:
		column = "alert_1h_sent"
	case racedomain.AlertFiveMinutes:
		column = "alert_5m_sent"
	default:
		return false, fmt.Errorf("racedb.MarkAlertSent: unknown alert %q", alert)
	}

	res, err := r.resolveDB(db).NewUpdate().
		Model((*Race)(nil)).
		Set("? = TRUE", bun.Ident(column)).
		Where("id = ?", raceID).
		Where("status = ?", racedomain.StatusOpen).
		Where("? = FALSE", bun.Ident(column)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("racedb.MarkAlertSent: %w", err)
	}
	return applied(res)
}

func (r *Impl) ReplaceResult(ctx context.Context, db bun.IDB, result *RaceResult) error {
	idb := r.resolveDB(db)
	if _, err := idb.NewDelete().
		Model((*RaceResult)(nil)).
		Where("race_id = ?", result.RaceID).
		Exec(ctx); err != nil {
		return fmt.Errorf("racedb.ReplaceResult: delete: %w", err)
	}
	result.ID = 0
	if _, err := idb.NewInsert().Model(result).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("racedb.ReplaceResult: insert: %w", err)
	}
	return nil
}

func (r *Impl) GetResult(ctx context.Context, db bun.IDB, raceID int64) (*RaceResult, error) {
	result := new(RaceResult)
	err := r.resolveDB(db).NewSelect().
		Model(result).
		Where("race_id = ?", raceID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("racedb.GetResult: %w", err)
	}
	return result, nil
}

func applied(res sql.Result) (bool, error) {
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
