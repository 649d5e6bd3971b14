package rivalrymigrations

import (
	"context"
	"fmt"

	rivalrydb "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rivalries table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*rivalrydb.Rivalry)(nil)).
				IfNotExists().
				ForeignKey(`("race_id") REFERENCES "races" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create rivalries table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE rivalries DROP CONSTRAINT IF EXISTS rivalries_not_self_check;
				ALTER TABLE rivalries ADD CONSTRAINT rivalries_not_self_check CHECK (challenger_id <> opponent_id);
				ALTER TABLE rivalries DROP CONSTRAINT IF EXISTS rivalries_status_check;
				ALTER TABLE rivalries ADD CONSTRAINT rivalries_status_check
					CHECK (status IN ('PENDING', 'ACCEPTED', 'DECLINED', 'FINISHED'));
				ALTER TABLE rivalries DROP CONSTRAINT IF EXISTS rivalries_margin_check;
				ALTER TABLE rivalries ADD CONSTRAINT rivalries_margin_check CHECK (margin >= 0);
				CREATE UNIQUE INDEX IF NOT EXISTS uq_rivalries_race_pair
					ON rivalries(race_id, LEAST(challenger_id, opponent_id), GREATEST(challenger_id, opponent_id));
				CREATE INDEX IF NOT EXISTS idx_rivalries_race_status ON rivalries(race_id, status);
				CREATE INDEX IF NOT EXISTS idx_rivalries_challenger ON rivalries(challenger_id);
				CREATE INDEX IF NOT EXISTS idx_rivalries_opponent ON rivalries(opponent_id);
			`); err != nil {
				return fmt.Errorf("failed to add rivalries constraints: %w", err)
			}

			fmt.Println("Rivalries table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rivalries table...")

		if _, err := db.NewDropTable().Model((*rivalrydb.Rivalry)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Rivalries table dropped successfully!")
		return nil
	})
}
