package scoringservice

import (
	"context"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	scoringdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories"
)

// Service places bets and scores races.
type Service interface {
	// CalculateRacePoints reverses any previous scoring of the race, scores
	// every bet against the stored result and runs the post-scoring hooks.
	// Running it again with the same result changes nothing.
	CalculateRacePoints(ctx context.Context, raceID int64) (*RaceScoringSummary, error)

	// PlaceBet creates or replaces the user's bet and re-takes its team
	// snapshot.
	PlaceBet(ctx context.Context, userID, raceID int64, picks racedomain.Picks) (*scoringdb.Bet, error)

	GetBet(ctx context.Context, userID, raceID int64) (*scoringdb.Bet, error)
}
