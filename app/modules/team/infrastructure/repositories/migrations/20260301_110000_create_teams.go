package teammigrations

import (
	"context"
	"fmt"

	teamdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating teams table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*teamdb.Team)(nil)).
				IfNotExists().
				ForeignKey(`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create teams table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE teams DROP CONSTRAINT IF EXISTS teams_total_points_check;
				ALTER TABLE teams ADD CONSTRAINT teams_total_points_check CHECK (total_points >= 0);
				ALTER TABLE teams DROP CONSTRAINT IF EXISTS teams_partner_not_captain_check;
				ALTER TABLE teams ADD CONSTRAINT teams_partner_not_captain_check
					CHECK (partner_id IS NULL OR partner_id <> captain_id);
				CREATE INDEX IF NOT EXISTS idx_teams_season_captain ON teams(season_id, captain_id);
				CREATE INDEX IF NOT EXISTS idx_teams_season_partner ON teams(season_id, partner_id) WHERE partner_id IS NOT NULL;
				CREATE INDEX IF NOT EXISTS idx_teams_season_points ON teams(season_id, total_points DESC, id);
			`); err != nil {
				return fmt.Errorf("failed to add teams constraints: %w", err)
			}

			fmt.Println("Teams table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping teams table...")

		if _, err := db.NewDropTable().Model((*teamdb.Team)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Teams table dropped successfully!")
		return nil
	})
}
