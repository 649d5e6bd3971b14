package scoringdb

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

// NewRepository creates a new bet repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) UpsertBet(ctx context.Context, db bun.IDB, bet *Bet) error {
	_, err := r.resolveDB(db).NewInsert().
		Model(bet).
		ExcludeColumn("id", "points", "created_at", "updated_at").
		On("CONFLICT (user_id, race_id) DO UPDATE").
		Set("team_id = EXCLUDED.team_id").
		Set("pole_driver_id = EXCLUDED.pole_driver_id").
		Set("dotd_driver_id = EXCLUDED.dotd_driver_id").
		Set("winning_team_id = EXCLUDED.winning_team_id").
		Set("p1 = EXCLUDED.p1").
		Set("p2 = EXCLUDED.p2").
		Set("p3 = EXCLUDED.p3").
		Set("p4 = EXCLUDED.p4").
		Set("p5 = EXCLUDED.p5").
		Set("p6 = EXCLUDED.p6").
		Set("p7 = EXCLUDED.p7").
		Set("p8 = EXCLUDED.p8").
		Set("p9 = EXCLUDED.p9").
		Set("p10 = EXCLUDED.p10").
		Set("updated_at = current_timestamp").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoringdb.UpsertBet: %w", err)
	}
	return nil
}

func (r *Impl) GetBet(ctx context.Context, db bun.IDB, userID, raceID int64) (*Bet, error) {
	bet := new(Bet)
	err := r.resolveDB(db).NewSelect().
		Model(bet).
		Where("b.user_id = ?", userID).
		Where("b.race_id = ?", raceID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scoringdb.GetBet: %w", err)
	}
	return bet, nil
}

func (r *Impl) ListByRace(ctx context.Context, db bun.IDB, raceID int64) ([]Bet, error) {
	var bets []Bet
	err := r.resolveDB(db).NewSelect().
		Model(&bets).
		Where("b.race_id = ?", raceID).
		OrderExpr("b.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoringdb.ListByRace: %w", err)
	}
	return bets, nil
}

func (r *Impl) SetPoints(ctx context.Context, db bun.IDB, betID int64, points int) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Bet)(nil)).
		Set("points = ?", points).
		Where("id = ?", betID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("scoringdb.SetPoints: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("scoringdb.SetPoints: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("scoringdb.SetPoints: %w", ErrNoRowsAffected)
	}
	return nil
}
