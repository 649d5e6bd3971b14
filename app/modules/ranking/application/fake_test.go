package rankingservice

import (
	"context"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	rankingdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Ranking Repo
// ------------------------

type FakeRankingRepo struct {
	trace []string

	DriverTotalsFunc  func(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdomain.Total, error)
	TeamTotalsFunc    func(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdb.TeamTotal, error)
	ReplaceSeasonFunc func(ctx context.Context, db bun.IDB, seasonID int64, rows []rankingdb.RankingCache) error

	// cache holds what ReplaceSeason wrote, keyed by season.
	cache map[int64][]rankingdb.RankingCache
}

func NewFakeRankingRepo() *FakeRankingRepo {
	return &FakeRankingRepo{trace: []string{}, cache: map[int64][]rankingdb.RankingCache{}}
}

func (f *FakeRankingRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRankingRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRankingRepo) DriverTotals(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdomain.Total, error) {
	f.record("DriverTotals")
	if f.DriverTotalsFunc != nil {
		return f.DriverTotalsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeRankingRepo) TeamTotals(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdb.TeamTotal, error) {
	f.record("TeamTotals")
	if f.TeamTotalsFunc != nil {
		return f.TeamTotalsFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeRankingRepo) ReplaceSeason(ctx context.Context, db bun.IDB, seasonID int64, rows []rankingdb.RankingCache) error {
	f.record("ReplaceSeason")
	if f.ReplaceSeasonFunc != nil {
		if err := f.ReplaceSeasonFunc(ctx, db, seasonID, rows); err != nil {
			return err
		}
	}
	f.cache[seasonID] = append([]rankingdb.RankingCache(nil), rows...)
	return nil
}

func (f *FakeRankingRepo) ListStandings(ctx context.Context, db bun.IDB, seasonID int64, category rankingdomain.Category) ([]rankingdb.RankingCache, error) {
	f.record("ListStandings")
	var out []rankingdb.RankingCache
	for _, row := range f.cache[seasonID] {
		if row.Category == category {
			out = append(out, row)
		}
	}
	return out, nil
}
