package rankingdb

import (
	"context"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	"github.com/uptrace/bun"
)

// Repository reads season totals and maintains the standings cache.
type Repository interface {
	// DriverTotals sums bet points per user over the season's finished
	// races.
	DriverTotals(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdomain.Total, error)
	// TeamTotals reads every season team's ledger total.
	TeamTotals(ctx context.Context, db bun.IDB, seasonID int64) ([]TeamTotal, error)
	// ReplaceSeason deletes the season's cached rows and writes rows in
	// their place.
	ReplaceSeason(ctx context.Context, db bun.IDB, seasonID int64, rows []RankingCache) error
	ListStandings(ctx context.Context, db bun.IDB, seasonID int64, category rankingdomain.Category) ([]RankingCache, error)
}
