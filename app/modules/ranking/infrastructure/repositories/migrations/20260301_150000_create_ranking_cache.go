package rankingmigrations

import (
	"context"
	"fmt"

	rankingdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ranking_cache table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*rankingdb.RankingCache)(nil)).
				IfNotExists().
				ForeignKey(`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create ranking_cache table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE ranking_cache DROP CONSTRAINT IF EXISTS ranking_cache_category_check;
				ALTER TABLE ranking_cache ADD CONSTRAINT ranking_cache_category_check
					CHECK (category IN ('DRIVER', 'TEAM'));
				CREATE INDEX IF NOT EXISTS idx_ranking_cache_season_category_position
					ON ranking_cache(season_id, category, position);
			`); err != nil {
				return fmt.Errorf("failed to add ranking_cache constraints: %w", err)
			}

			fmt.Println("Ranking cache table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ranking_cache table...")

		if _, err := db.NewDropTable().Model((*rankingdb.RankingCache)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Ranking cache table dropped successfully!")
		return nil
	})
}
