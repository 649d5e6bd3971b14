package racemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding indices for race module...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_races_status_open_at ON races(status, bets_open_at);
				CREATE INDEX IF NOT EXISTS idx_races_status_close_at ON races(status, bets_close_at);
				CREATE INDEX IF NOT EXISTS idx_races_season_date ON races(season_id, race_date);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_seasons_single_active ON seasons(is_active) WHERE is_active;
			`); err != nil {
				return fmt.Errorf("failed to add race indices: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back race indices...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP INDEX IF EXISTS idx_races_status_open_at;
				DROP INDEX IF EXISTS idx_races_status_close_at;
				DROP INDEX IF EXISTS idx_races_season_date;
				DROP INDEX IF EXISTS idx_seasons_single_active;
			`); err != nil {
				return fmt.Errorf("failed to drop race indices: %w", err)
			}
			return nil
		})
	})
}
