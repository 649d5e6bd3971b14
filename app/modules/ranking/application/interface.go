package rankingservice

import (
	"context"
	"io"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
)

// Service maintains and reads the per-season standings cache.
type Service interface {
	// RefreshLeaderboard recomputes both categories and replaces the
	// season's cache rows in one transaction.
	RefreshLeaderboard(ctx context.Context, seasonID int64) error

	// ComputeStandings ranks the season from live data without touching the
	// cache.
	ComputeStandings(ctx context.Context, seasonID int64) (rankingdomain.Standings, error)

	// GetStandings reads the cached rows of one category.
	GetStandings(ctx context.Context, seasonID int64, category rankingdomain.Category) ([]rankingdomain.Entry, error)

	// ExportXLSX writes a workbook with one sheet per category.
	ExportXLSX(ctx context.Context, seasonID int64, w io.Writer) error

	// RenderChart draws the top entries of a category as a PNG bar chart.
	RenderChart(ctx context.Context, seasonID int64, category rankingdomain.Category, top int) ([]byte, error)
}
