package raceservice

import (
	"context"
	"sync"
	"time"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Race Repo
// ------------------------

type FakeRaceRepo struct {
	trace []string

	GetRaceFunc               func(ctx context.Context, db bun.IDB, raceID int64) (*racedb.Race, error)
	GetRaceWithResultFunc     func(ctx context.Context, db bun.IDB, raceID int64) (*racedb.Race, error)
	CreateRaceFunc            func(ctx context.Context, db bun.IDB, race *racedb.Race) error
	ListDueToOpenFunc         func(ctx context.Context, db bun.IDB, now time.Time) ([]racedb.Race, error)
	ListDueToCloseFunc        func(ctx context.Context, db bun.IDB, now time.Time) ([]racedb.Race, error)
	ListOpenWithDeadlineFunc  func(ctx context.Context, db bun.IDB) ([]racedb.Race, error)
	NextChallengeableRaceFunc func(ctx context.Context, db bun.IDB) (*racedb.Race, error)
	TransitionStatusFunc      func(ctx context.Context, db bun.IDB, raceID int64, from, to racedomain.Status) (bool, error)
	MarkFinishedFunc          func(ctx context.Context, db bun.IDB, raceID int64) error
	MarkAlertSentFunc         func(ctx context.Context, db bun.IDB, raceID int64, alert racedomain.Alert) (bool, error)
	ReplaceResultFunc         func(ctx context.Context, db bun.IDB, result *racedb.RaceResult) error
	GetResultFunc             func(ctx context.Context, db bun.IDB, raceID int64) (*racedb.RaceResult, error)
	CreateSeasonFunc          func(ctx context.Context, db bun.IDB, season *racedb.Season) error
	GetSeasonFunc             func(ctx context.Context, db bun.IDB, seasonID int64) (*racedb.Season, error)
	GetActiveSeasonFunc       func(ctx context.Context, db bun.IDB) (*racedb.Season, error)
	DeactivateAllSeasonsFunc  func(ctx context.Context, db bun.IDB) error
	FinishSeasonFunc          func(ctx context.Context, db bun.IDB, seasonID int64) error
}

func NewFakeRaceRepo() *FakeRaceRepo {
	return &FakeRaceRepo{trace: []string{}}
}

func (f *FakeRaceRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRaceRepo) GetRace(ctx context.Context, db bun.IDB, raceID int64) (*racedb.Race, error) {
	f.record("GetRace")
	if f.GetRaceFunc != nil {
		return f.GetRaceFunc(ctx, db, raceID)
	}
	return nil, racedb.ErrNotFound
}

func (f *FakeRaceRepo) GetRaceWithResult(ctx context.Context, db bun.IDB, raceID int64) (*racedb.Race, error) {
	f.record("GetRaceWithResult")
	if f.GetRaceWithResultFunc != nil {
		return f.GetRaceWithResultFunc(ctx, db, raceID)
	}
	return nil, racedb.ErrNotFound
}

func (f *FakeRaceRepo) CreateRace(ctx context.Context, db bun.IDB, race *racedb.Race) error {
	f.record("CreateRace")
	if f.CreateRaceFunc != nil {
		return f.CreateRaceFunc(ctx, db, race)
	}
	return nil
}

func (f *FakeRaceRepo) ListDueToOpen(ctx context.Context, db bun.IDB, now time.Time) ([]racedb.Race, error) {
	f.record("ListDueToOpen")
	if f.ListDueToOpenFunc != nil {
		return f.ListDueToOpenFunc(ctx, db, now)
	}
	return nil, nil
}

func (f *FakeRaceRepo) ListDueToClose(ctx context.Context, db bun.IDB, now time.Time) ([]racedb.Race, error) {
	f.record("ListDueToClose")
	if f.ListDueToCloseFunc != nil {
		return f.ListDueToCloseFunc(ctx, db, now)
	}
	return nil, nil
}

func (f *FakeRaceRepo) ListOpenWithDeadline(ctx context.Context, db bun.IDB) ([]racedb.Race, error) {
	f.record("ListOpenWithDeadline")
	if f.ListOpenWithDeadlineFunc != nil {
		return f.ListOpenWithDeadlineFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRaceRepo) NextChallengeableRace(ctx context.Context, db bun.IDB) (*racedb.Race, error) {
	f.record("NextChallengeableRace")
	if f.NextChallengeableRaceFunc != nil {
		return f.NextChallengeableRaceFunc(ctx, db)
	}
	return nil, racedb.ErrNotFound
}

func (f *FakeRaceRepo) TransitionStatus(ctx context.Context, db bun.IDB, raceID int64, from, to racedomain.Status) (bool, error) {
	f.record("TransitionStatus")
	if f.TransitionStatusFunc != nil {
		return f.TransitionStatusFunc(ctx, db, raceID, from, to)
	}
	return true, nil
}

func (f *FakeRaceRepo) MarkFinished(ctx context.Context, db bun.IDB, raceID int64) error {
	f.record("MarkFinished")
	if f.MarkFinishedFunc != nil {
		return f.MarkFinishedFunc(ctx, db, raceID)
	}
	return nil
}

func (f *FakeRaceRepo) MarkAlertSent(ctx context.Context, db bun.IDB, raceID int64, alert racedomain.Alert) (bool, error) {
	f.record("MarkAlertSent")
	if f.MarkAlertSentFunc != nil {
		return f.MarkAlertSentFunc(ctx, db, raceID, alert)
	}
	return true, nil
}

func (f *FakeRaceRepo) ReplaceResult(ctx context.Context, db bun.IDB, result *racedb.RaceResult) error {
	f.record("ReplaceResult")
	if f.ReplaceResultFunc != nil {
		return f.ReplaceResultFunc(ctx, db, result)
	}
	return nil
}

func (f *FakeRaceRepo) GetResult(ctx context.Context, db bun.IDB, raceID int64) (*racedb.RaceResult, error) {
	f.record("GetResult")
	if f.GetResultFunc != nil {
		return f.GetResultFunc(ctx, db, raceID)
	}
	return nil, racedb.ErrNotFound
}

func (f *FakeRaceRepo) CreateSeason(ctx context.Context, db bun.IDB, season *racedb.Season) error {
	f.record("CreateSeason")
	if f.CreateSeasonFunc != nil {
		return f.CreateSeasonFunc(ctx, db, season)
	}
	return nil
}

func (f *FakeRaceRepo) GetSeason(ctx context.Context, db bun.IDB, seasonID int64) (*racedb.Season, error) {
	f.record("GetSeason")
	if f.GetSeasonFunc != nil {
		return f.GetSeasonFunc(ctx, db, seasonID)
	}
	return nil, racedb.ErrNotFound
}

func (f *FakeRaceRepo) GetActiveSeason(ctx context.Context, db bun.IDB) (*racedb.Season, error) {
	f.record("GetActiveSeason")
	if f.GetActiveSeasonFunc != nil {
		return f.GetActiveSeasonFunc(ctx, db)
	}
	return nil, racedb.ErrNoActiveSeason
}

func (f *FakeRaceRepo) DeactivateAllSeasons(ctx context.Context, db bun.IDB) error {
	f.record("DeactivateAllSeasons")
	if f.DeactivateAllSeasonsFunc != nil {
		return f.DeactivateAllSeasonsFunc(ctx, db)
	}
	return nil
}

func (f *FakeRaceRepo) FinishSeason(ctx context.Context, db bun.IDB, seasonID int64) error {
	f.record("FinishSeason")
	if f.FinishSeasonFunc != nil {
		return f.FinishSeasonFunc(ctx, db, seasonID)
	}
	return nil
}

func (f *FakeRaceRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ racedb.Repository = (*FakeRaceRepo)(nil)

// ------------------------
// Fake collaborators
// ------------------------

type FakeNotifier struct {
	mu   sync.Mutex
	sent []notifyservice.Notification
}

func (f *FakeNotifier) Notify(_ context.Context, n notifyservice.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

func (f *FakeNotifier) Titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, n := range f.sent {
		out = append(out, n.Title)
	}
	return out
}

type FakeScoringQueue struct {
	EnqueueFunc func(ctx context.Context, raceID, resultID int64) error
	calls       [][2]int64
}

func (f *FakeScoringQueue) EnqueueRaceScoring(ctx context.Context, raceID, resultID int64) error {
	f.calls = append(f.calls, [2]int64{raceID, resultID})
	if f.EnqueueFunc != nil {
		return f.EnqueueFunc(ctx, raceID, resultID)
	}
	return nil
}

type FakeSeasonAwarder struct {
	ProcessFunc func(ctx context.Context, seasonID int64) (int, error)
	calls       []int64
}

func (f *FakeSeasonAwarder) ProcessSeasonEndAwards(ctx context.Context, seasonID int64) (int, error) {
	f.calls = append(f.calls, seasonID)
	if f.ProcessFunc != nil {
		return f.ProcessFunc(ctx, seasonID)
	}
	return 0, nil
}
