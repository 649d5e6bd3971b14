package scoringservice

import (
	"context"
	"sort"
	"sync"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	scoringdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Bet Repo
// ------------------------

// FakeBetRepo keeps bets in memory and applies writes like the real
// repository, so multi-run properties can be checked.
type FakeBetRepo struct {
	mu     sync.Mutex
	trace  []string
	nextID int64
	bets   map[int64]*scoringdb.Bet

	SetPointsFunc func(ctx context.Context, db bun.IDB, betID int64, points int) error
}

func NewFakeBetRepo(bets ...scoringdb.Bet) *FakeBetRepo {
	f := &FakeBetRepo{trace: []string{}, bets: map[int64]*scoringdb.Bet{}}
	for i := range bets {
		b := bets[i]
		if b.ID == 0 {
			f.nextID++
			b.ID = f.nextID
		} else if b.ID > f.nextID {
			f.nextID = b.ID
		}
		f.bets[b.ID] = &b
	}
	return f
}

func (f *FakeBetRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBetRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeBetRepo) UpsertBet(ctx context.Context, db bun.IDB, bet *scoringdb.Bet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertBet")
	for _, existing := range f.bets {
		if existing.UserID == bet.UserID && existing.RaceID == bet.RaceID {
			existing.TeamID = bet.TeamID
			existing.SetPicks(bet.Picks())
			*bet = *existing
			return nil
		}
	}
	f.nextID++
	bet.ID = f.nextID
	bet.Points = 0
	cp := *bet
	f.bets[cp.ID] = &cp
	return nil
}

func (f *FakeBetRepo) GetBet(ctx context.Context, db bun.IDB, userID, raceID int64) (*scoringdb.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetBet")
	for _, b := range f.bets {
		if b.UserID == userID && b.RaceID == raceID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, scoringdb.ErrNotFound
}

func (f *FakeBetRepo) ListByRace(ctx context.Context, db bun.IDB, raceID int64) ([]scoringdb.Bet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListByRace")
	return f.snapshot(raceID), nil
}

func (f *FakeBetRepo) SetPoints(ctx context.Context, db bun.IDB, betID int64, points int) error {
	if f.SetPointsFunc != nil {
		if err := f.SetPointsFunc(ctx, db, betID, points); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetPoints")
	b, ok := f.bets[betID]
	if !ok {
		return scoringdb.ErrNoRowsAffected
	}
	b.Points = points
	return nil
}

// Detach clears the team snapshot of every bet userID placed, as a roster
// change does.
func (f *FakeBetRepo) Detach(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bets {
		if b.UserID == userID {
			b.TeamID = nil
		}
	}
}

// Bets returns the stored bets of raceID ordered by id.
func (f *FakeBetRepo) Bets(raceID int64) []scoringdb.Bet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(raceID)
}

func (f *FakeBetRepo) snapshot(raceID int64) []scoringdb.Bet {
	out := []scoringdb.Bet{}
	for _, b := range f.bets {
		if b.RaceID == raceID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var _ scoringdb.Repository = (*FakeBetRepo)(nil)

// ------------------------
// Fake Race Repo
// ------------------------

// FakeRaceRepo serves a single race. Methods the scorer never calls fall
// through to the nil embedded interface.
type FakeRaceRepo struct {
	racedb.Repository

	mu       sync.Mutex
	race     *racedb.Race
	finished []int64
}

func (f *FakeRaceRepo) GetRace(ctx context.Context, db bun.IDB, raceID int64) (*racedb.Race, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.race == nil || f.race.ID != raceID {
		return nil, racedb.ErrNotFound
	}
	cp := *f.race
	return &cp, nil
}

func (f *FakeRaceRepo) GetRaceWithResult(ctx context.Context, db bun.IDB, raceID int64) (*racedb.Race, error) {
	return f.GetRace(ctx, db, raceID)
}

func (f *FakeRaceRepo) MarkFinished(ctx context.Context, db bun.IDB, raceID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, raceID)
	if f.race != nil && f.race.ID == raceID {
		f.race.Status = racedomain.StatusFinished
	}
	return nil
}

// ------------------------
// Fake Ledger / Directory
// ------------------------

// FakeLedger applies credits and clamped debits to in-memory totals.
type FakeLedger struct {
	mu      sync.Mutex
	totals  map[int64]int
	entries []string
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{totals: map[int64]int{}}
}

func (f *FakeLedger) Credit(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	if points <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totals[teamID] += points
	f.entries = append(f.entries, "credit")
	return nil
}

func (f *FakeLedger) Debit(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	if points <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totals[teamID] = max(f.totals[teamID]-points, 0)
	f.entries = append(f.entries, "debit")
	return nil
}

func (f *FakeLedger) Totals() map[int64]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]int, len(f.totals))
	for k, v := range f.totals {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

type FakeDirectory struct {
	teams map[int64]int64
}

func (f *FakeDirectory) TeamIDForUser(ctx context.Context, db bun.IDB, seasonID, userID int64) (*int64, error) {
	id, ok := f.teams[userID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// ------------------------
// Fake hooks
// ------------------------

type FakeBadges struct {
	mu    sync.Mutex
	users []int64
	Err   error
}

func (f *FakeBadges) EvaluateAfterRace(ctx context.Context, userID, raceID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	if f.Err != nil {
		return 0, f.Err
	}
	return 1, nil
}

type FakeRivalries struct {
	races []int64
}

func (f *FakeRivalries) ProcessRivalries(ctx context.Context, raceID int64) (int, error) {
	f.races = append(f.races, raceID)
	return 2, nil
}

type FakeLeaderboard struct {
	seasons []int64
}

func (f *FakeLeaderboard) RefreshLeaderboard(ctx context.Context, seasonID int64) error {
	f.seasons = append(f.seasons, seasonID)
	return nil
}

type FakeNotifier struct {
	mu   sync.Mutex
	sent []notifyservice.Notification
}

func (f *FakeNotifier) Notify(_ context.Context, n notifyservice.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}
