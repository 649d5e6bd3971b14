package badgemigrations

import (
	"context"
	"fmt"

	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating achievements tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewCreateTable().
				Model((*badgedb.Achievement)(nil)).
				IfNotExists().
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create achievements table: %w", err)
			}

			if _, err := tx.NewCreateTable().
				Model((*badgedb.UserAchievement)(nil)).
				IfNotExists().
				ForeignKey(`("achievement_id") REFERENCES "achievements" ("id") ON DELETE CASCADE`).
				ForeignKey(`("race_id") REFERENCES "races" ("id") ON DELETE SET NULL`).
				ForeignKey(`("team_id") REFERENCES "teams" ("id") ON DELETE SET NULL`).
				ForeignKey(`("season_id") REFERENCES "seasons" ("id") ON DELETE CASCADE`).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to create user_achievements table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				ALTER TABLE achievements DROP CONSTRAINT IF EXISTS achievements_threshold_check;
				ALTER TABLE achievements ADD CONSTRAINT achievements_threshold_check CHECK (threshold > 0);
				ALTER TABLE achievements DROP CONSTRAINT IF EXISTS achievements_rule_type_check;
				ALTER TABLE achievements ADD CONSTRAINT achievements_rule_type_check CHECK (rule_type IN (
					'TOTAL_POINTS', 'RACE_POINTS', 'POLE_HITS', 'WINNER_HITS', 'DOTD_HITS',
					'RACES_PARTICIPATED', 'PILOT_RANKING', 'TEAM_RANKING'
				));
				CREATE UNIQUE INDEX IF NOT EXISTS uq_user_achievements_lifetime
					ON user_achievements(user_id, achievement_id) WHERE season_id IS NULL;
				CREATE UNIQUE INDEX IF NOT EXISTS uq_user_achievements_season
					ON user_achievements(user_id, achievement_id, season_id) WHERE season_id IS NOT NULL;
				CREATE INDEX IF NOT EXISTS idx_user_achievements_unseen
					ON user_achievements(user_id) WHERE seen = FALSE;
			`); err != nil {
				return fmt.Errorf("failed to add achievements constraints: %w", err)
			}

			fmt.Println("Achievements tables created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping achievements tables...")

		for _, model := range []any{(*badgedb.UserAchievement)(nil), (*badgedb.Achievement)(nil)} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Achievements tables dropped successfully!")
		return nil
	})
}
