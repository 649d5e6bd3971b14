package rankingservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	rankingdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo rankingdb.Repository, locker lock.Locker) *RankingService {
	return NewRankingService(
		repo,
		locker,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
	)
}

func ptr(v int64) *int64 { return &v }

func seedTotals(repo *FakeRankingRepo) {
	repo.DriverTotalsFunc = func(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdomain.Total, error) {
		return []rankingdomain.Total{
			{EntityID: 30, Points: 21},
			{EntityID: 10, Points: 40},
			{EntityID: 20, Points: 21},
		}, nil
	}
	repo.TeamTotalsFunc = func(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdb.TeamTotal, error) {
		return []rankingdb.TeamTotal{
			{TeamID: 2, TotalPoints: 61, CaptainID: 10, PartnerID: ptr(20)},
			{TeamID: 1, TotalPoints: 61, CaptainID: 30},
		}, nil
	}
}

func TestRefreshLeaderboard(t *testing.T) {
	repo := NewFakeRankingRepo()
	seedTotals(repo)
	svc := newTestService(repo, lock.NewMemoryLocker())

	require.NoError(t, svc.RefreshLeaderboard(context.Background(), 7))
	assert.Equal(t, []string{"DriverTotals", "TeamTotals", "ReplaceSeason"}, repo.Trace())

	drivers, err := svc.GetStandings(context.Background(), 7, rankingdomain.CategoryDriver)
	require.NoError(t, err)
	assert.Equal(t, []rankingdomain.Entry{
		{Category: rankingdomain.CategoryDriver, EntityID: 10, Points: 40, Position: 1},
		{Category: rankingdomain.CategoryDriver, EntityID: 20, Points: 21, Position: 2},
		{Category: rankingdomain.CategoryDriver, EntityID: 30, Points: 21, Position: 3},
	}, drivers)

	teams, err := svc.GetStandings(context.Background(), 7, rankingdomain.CategoryTeam)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, int64(1), teams[0].EntityID, "equal totals go to the lower id")
	assert.Equal(t, 2, teams[1].Position)
}

func TestRefreshLeaderboard_Failures(t *testing.T) {
	t.Run("read failure leaves the cache alone", func(t *testing.T) {
		repo := NewFakeRankingRepo()
		repo.DriverTotalsFunc = func(ctx context.Context, db bun.IDB, seasonID int64) ([]rankingdomain.Total, error) {
			return nil, errors.New("connection refused")
		}
		svc := newTestService(repo, lock.NewMemoryLocker())

		assert.Error(t, svc.RefreshLeaderboard(context.Background(), 7))
		assert.Equal(t, []string{"DriverTotals"}, repo.Trace())
	})

	t.Run("busy season past the wait policy", func(t *testing.T) {
		locker := lock.NewMemoryLocker()
		release, err := locker.TryAcquire(context.Background(), lock.SeasonRankingKey(7), time.Minute)
		require.NoError(t, err)
		defer release(context.Background())

		repo := NewFakeRankingRepo()
		svc := newTestService(repo, locker)
		svc.waitPolicy = lock.WaitPolicy{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, MaxElapsedTime: 10 * time.Millisecond}

		err = svc.RefreshLeaderboard(context.Background(), 7)
		assert.ErrorIs(t, err, ErrRankingBusy)
		assert.Empty(t, repo.Trace())
	})
}

func TestRefreshLeaderboard_Concurrent(t *testing.T) {
	repo := NewFakeRankingRepo()
	seedTotals(repo)
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	repo.ReplaceSeasonFunc = func(ctx context.Context, db bun.IDB, seasonID int64, rows []rankingdb.RankingCache) error {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}
	svc := newTestService(repo, lock.NewMemoryLocker())

	// The fake repo is only touched while the season lock is held.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RefreshLeaderboard(context.Background(), 7))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight)
	assert.Len(t, repo.Trace(), 12)
}

func TestComputeStandings(t *testing.T) {
	repo := NewFakeRankingRepo()
	seedTotals(repo)
	svc := newTestService(repo, nil)

	standings, err := svc.ComputeStandings(context.Background(), 7)
	require.NoError(t, err)

	first, ok := standings.TeamAt(1)
	require.True(t, ok)
	assert.Equal(t, int64(1), first.EntityID)
	assert.Equal(t, []int64{30}, first.Members())

	second, ok := standings.TeamAt(2)
	require.True(t, ok)
	assert.Equal(t, []int64{10, 20}, second.Members())

	assert.NotContains(t, repo.Trace(), "ReplaceSeason")
}

func TestGetStandings_InvalidCategory(t *testing.T) {
	svc := newTestService(NewFakeRankingRepo(), nil)
	_, err := svc.GetStandings(context.Background(), 7, rankingdomain.Category("CONSTRUCTOR"))
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
