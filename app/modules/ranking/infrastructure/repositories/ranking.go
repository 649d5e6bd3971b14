package rankingdb

import (
	"context"
	"fmt"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ranking repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) DriverTotals(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdomain.Total, error) {
	var rows []struct {
		UserID int64 `bun:"user_id"`
		Total  int   `bun:"total"`
	}
	err := r.resolveDB(db).NewSelect().
		TableExpr("bets AS b").
		Join("JOIN races AS r ON r.id = b.race_id").
		ColumnExpr("b.user_id").
		ColumnExpr("COALESCE(SUM(b.points), 0) AS total").
		Where("r.season_id = ?", seasonID).
		Where("r.status = ?", racedomain.StatusFinished).
		Group("b.user_id").
		OrderExpr("total DESC, b.user_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("rankingdb.DriverTotals: %w", err)
	}

	totals := make([]rankingdomain.Total, len(rows))
	for i, row := range rows {
		totals[i] = rankingdomain.Total{EntityID: row.UserID, Points: row.Total}
	}
	return totals, nil
}

func (r *Impl) TeamTotals(ctx context.Context, db bun.IDB, seasonID int64) ([]TeamTotal, error) {
	var rows []TeamTotal
	err := r.resolveDB(db).NewSelect().
		TableExpr("teams AS t").
		Column("t.id", "t.total_points", "t.captain_id", "t.partner_id").
		Where("t.season_id = ?", seasonID).
		OrderExpr("t.total_points DESC, t.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("rankingdb.TeamTotals: %w", err)
	}
	return rows, nil
}

func (r *Impl) ReplaceSeason(ctx context.Context, db bun.IDB, seasonID int64, rows []RankingCache) error {
	idb := r.resolveDB(db)
	if _, err := idb.NewDelete().
		Model((*RankingCache)(nil)).
		Where("season_id = ?", seasonID).
		Exec(ctx); err != nil {
		return fmt.Errorf("rankingdb.ReplaceSeason: delete: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].SeasonID = seasonID
	}
	if _, err := idb.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("rankingdb.ReplaceSeason: insert: %w", err)
	}
	return nil
}

func (r *Impl) ListStandings(ctx context.Context, db bun.IDB, seasonID int64, category rankingdomain.Category) ([]RankingCache, error) {
	var rows []RankingCache
	err := r.resolveDB(db).NewSelect().
		Model(&rows).
		Where("rc.season_id = ?", seasonID).
		Where("rc.category = ?", category).
		OrderExpr("rc.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rankingdb.ListStandings: %w", err)
	}
	return rows, nil
}
