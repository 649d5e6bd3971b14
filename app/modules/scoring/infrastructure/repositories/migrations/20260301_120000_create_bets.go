package scoringmigrations

import (
	"context"
	"fmt"

	scoringdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating bets table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*scoringdb.Bet)(nil)).
				IfNotExists().
				ForeignKey(`("race_id") REFERENCES "races" ("id") ON DELETE CASCADE`).
				ForeignKey(`("team_id") REFERENCES "teams" ("id") ON DELETE SET NULL`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create bets table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE bets DROP CONSTRAINT IF EXISTS bets_points_check;
				ALTER TABLE bets ADD CONSTRAINT bets_points_check CHECK (points >= 0);
				CREATE INDEX IF NOT EXISTS idx_bets_race ON bets(race_id);
				CREATE INDEX IF NOT EXISTS idx_bets_team_user ON bets(team_id, user_id) WHERE team_id IS NOT NULL;
			`); err != nil {
				return fmt.Errorf("failed to add bets constraints: %w", err)
			}

			fmt.Println("Bets table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping bets table...")

		if _, err := db.NewDropTable().Model((*scoringdb.Bet)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Bets table dropped successfully!")
		return nil
	})
}
