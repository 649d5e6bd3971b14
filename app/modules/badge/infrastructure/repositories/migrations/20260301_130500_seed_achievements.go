package badgemigrations

import (
	"context"
	"fmt"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	"github.com/uptrace/bun"
)

var defaultAchievements = []badgedb.Achievement{
	{Code: "first-lap", Name: "First Lap", Description: "Place a prediction for your first race", Icon: "🏁", Color: "gray", RuleType: badgedomain.KindRacesParticipated, Threshold: 1},
	{Code: "full-season", Name: "Iron Man", Description: "Predict 20 races", Icon: "🦾", Color: "silver", RuleType: badgedomain.KindRacesParticipated, Threshold: 20},
	{Code: "sniper", Name: "Sniper", Description: "Score 10 points in a single race", Icon: "🎯", Color: "gold", RuleType: badgedomain.KindRacePoints, Threshold: 10},
	{Code: "centurion", Name: "Centurion", Description: "Reach 100 points", Icon: "💯", Color: "gold", RuleType: badgedomain.KindTotalPoints, Threshold: 100},
	{Code: "pole-hunter", Name: "Pole Hunter", Description: "Call the pole sitter 5 times", Icon: "⏱️", Color: "purple", RuleType: badgedomain.KindPoleHits, Threshold: 5},
	{Code: "strategist", Name: "Strategist", Description: "Call the winning team 5 times", Icon: "🔧", Color: "blue", RuleType: badgedomain.KindWinnerHits, Threshold: 5},
	{Code: "crowd-reader", Name: "Crowd Reader", Description: "Call the driver of the day 3 times", Icon: "📣", Color: "orange", RuleType: badgedomain.KindDotdHits, Threshold: 3},
	{Code: "champion", Name: "Champion", Description: "Finish the season first in the driver standings", Icon: "🏆", Color: "gold", RuleType: badgedomain.KindPilotRanking, Threshold: 1},
	{Code: "runner-up", Name: "Runner-up", Description: "Finish the season second in the driver standings", Icon: "🥈", Color: "silver", RuleType: badgedomain.KindPilotRanking, Threshold: 2},
	{Code: "constructors-champion", Name: "Constructors' Champion", Description: "Finish the season with the top team", Icon: "🏎️", Color: "red", RuleType: badgedomain.KindTeamRanking, Threshold: 1},
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Seeding default achievements...")

		rows := make([]badgedb.Achievement, len(defaultAchievements))
		copy(rows, defaultAchievements)
		if _, err := db.NewInsert().
			Model(&rows).
			On("CONFLICT (code) DO NOTHING").
			Returning("NULL").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed achievements: %w", err)
		}

		fmt.Println("Default achievements seeded successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		codes := make([]string, len(defaultAchievements))
		for i, a := range defaultAchievements {
			codes[i] = a.Code
		}
		_, err := db.NewDelete().
			Model((*badgedb.Achievement)(nil)).
			Where("code IN (?)", bun.In(codes)).
			Exec(ctx)
		return err
	})
}
