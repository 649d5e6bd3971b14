package racedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

func (r *Impl) CreateSeason(ctx context.Context, db bun.IDB, season *Season) error {
	if _, err := r.resolveDB(db).NewInsert().Model(season).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("racedb.CreateSeason: %w", err)
	}
	return nil
}

func (r *Impl) GetSeason(ctx context.Context, db bun.IDB, seasonID int64) (*Season, error) {
	season := new(Season)
	err := r.resolveDB(db).NewSelect().
		Model(season).
		Where("sn.id = ?", seasonID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("racedb.GetSeason: %w", err)
	}
	return season, nil
}

func (r *Impl) GetActiveSeason(ctx context.Context, db bun.IDB) (*Season, error) {
	season := new(Season)
	err := r.resolveDB(db).NewSelect().
		Model(season).
		Where("sn.is_active = TRUE").
		OrderExpr("sn.year DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoActiveSeason
		}
		return nil, fmt.Errorf("racedb.GetActiveSeason: %w", err)
	}
	return season, nil
}

func (r *Impl) DeactivateAllSeasons(ctx context.Context, db bun.IDB) error {
	_, err := r.resolveDB(db).NewUpdate().
		Model((*Season)(nil)).
		Set("is_active = FALSE").
		Where("is_active = TRUE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("racedb.DeactivateAllSeasons: %w", err)
	}
	return nil
}

func (r *Impl) FinishSeason(ctx context.Context, db bun.IDB, seasonID int64) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Season)(nil)).
		Set("is_active = FALSE").
		Set("is_finished = TRUE").
		Where("id = ?", seasonID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("racedb.FinishSeason: %w", err)
	}
	ok, err := applied(res)
	if err != nil {
		return fmt.Errorf("racedb.FinishSeason: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
