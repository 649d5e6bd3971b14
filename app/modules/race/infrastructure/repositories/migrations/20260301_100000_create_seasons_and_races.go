package racemigrations

import (
	"context"
	"fmt"

	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating seasons, races and race_results tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().Model((*racedb.Season)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create seasons table: %w", err)
			}

			if _, err := tx.NewCreateTable().
				Model((*racedb.Race)(nil)).
				IfNotExists().
				ForeignKey(`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create races table: %w", err)
			}

			if _, err := tx.NewCreateTable().
				Model((*racedb.RaceResult)(nil)).
				IfNotExists().
				ForeignKey(`("race_id") REFERENCES "races" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create race_results table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE races DROP CONSTRAINT IF EXISTS races_status_check;
				ALTER TABLE races ADD CONSTRAINT races_status_check
					CHECK (status IN ('SCHEDULED', 'OPEN', 'CLOSED', 'FINISHED'));
			`); err != nil {
				return fmt.Errorf("failed to add races status check: %w", err)
			}

			fmt.Println("Race tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping race tables...")

		for _, model := range []interface{}{(*racedb.RaceResult)(nil), (*racedb.Race)(nil), (*racedb.Season)(nil)} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Race tables dropped successfully!")
		return nil
	})
}
