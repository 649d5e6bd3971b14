package rivalryservice

import (
	"context"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	rivalrydomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/domain"
	rivalrydb "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Rivalry Repo
// ------------------------

type FakeRivalryRepo struct {
	trace []string

	RacePointsFunc func(ctx context.Context, db bun.IDB, raceID int64, userIDs []int64) (map[int64]int, error)
	FinishErr      error

	rows []rivalrydb.Rivalry
}

func NewFakeRivalryRepo(rows ...rivalrydb.Rivalry) *FakeRivalryRepo {
	return &FakeRivalryRepo{trace: []string{}, rows: rows}
}

func (f *FakeRivalryRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRivalryRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRivalryRepo) Row(id int64) rivalrydb.Rivalry {
	for _, rv := range f.rows {
		if rv.ID == id {
			return rv
		}
	}
	return rivalrydb.Rivalry{}
}

func (f *FakeRivalryRepo) CreateRivalry(ctx context.Context, db bun.IDB, rv *rivalrydb.Rivalry) error {
	f.record("CreateRivalry")
	rv.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *rv)
	return nil
}

func (f *FakeRivalryRepo) GetRivalry(ctx context.Context, db bun.IDB, rivalryID int64) (*rivalrydb.Rivalry, error) {
	f.record("GetRivalry")
	for _, rv := range f.rows {
		if rv.ID == rivalryID {
			return &rv, nil
		}
	}
	return nil, rivalrydb.ErrNotFound
}

func (f *FakeRivalryRepo) ExistsForPair(ctx context.Context, db bun.IDB, raceID, userA, userB int64) (bool, error) {
	f.record("ExistsForPair")
	for _, rv := range f.rows {
		if rv.RaceID != raceID {
			continue
		}
		if (rv.ChallengerID == userA && rv.OpponentID == userB) || (rv.ChallengerID == userB && rv.OpponentID == userA) {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRivalryRepo) ListByRaceAndStatus(ctx context.Context, db bun.IDB, raceID int64, status rivalrydomain.Status) ([]rivalrydb.Rivalry, error) {
	f.record("ListByRaceAndStatus")
	var out []rivalrydb.Rivalry
	for _, rv := range f.rows {
		if rv.RaceID == raceID && rv.Status == status {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *FakeRivalryRepo) ListForUser(ctx context.Context, db bun.IDB, userID int64, status *rivalrydomain.Status) ([]rivalrydb.Rivalry, error) {
	f.record("ListForUser")
	var out []rivalrydb.Rivalry
	for _, rv := range f.rows {
		if rv.ChallengerID != userID && rv.OpponentID != userID {
			continue
		}
		if status != nil && rv.Status != *status {
			continue
		}
		out = append(out, rv)
	}
	return out, nil
}

func (f *FakeRivalryRepo) RacePoints(ctx context.Context, db bun.IDB, raceID int64, userIDs []int64) (map[int64]int, error) {
	f.record("RacePoints")
	if f.RacePointsFunc != nil {
		return f.RacePointsFunc(ctx, db, raceID, userIDs)
	}
	return map[int64]int{}, nil
}

func (f *FakeRivalryRepo) TransitionStatus(ctx context.Context, db bun.IDB, rivalryID int64, from, to rivalrydomain.Status) (bool, error) {
	f.record("TransitionStatus")
	for i := range f.rows {
		if f.rows[i].ID == rivalryID && f.rows[i].Status == from {
			f.rows[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRivalryRepo) Finish(ctx context.Context, db bun.IDB, rivalryID int64, outcome rivalrydomain.Outcome) (bool, error) {
	f.record("Finish")
	if f.FinishErr != nil {
		return false, f.FinishErr
	}
	for i := range f.rows {
		if f.rows[i].ID == rivalryID && f.rows[i].Status == rivalrydomain.StatusAccepted {
			f.rows[i].Status = rivalrydomain.StatusFinished
			f.rows[i].WinnerID = outcome.WinnerID
			f.rows[i].Margin = outcome.Margin
			return true, nil
		}
	}
	return false, nil
}

// ------------------------
// Fake Race Repo
// ------------------------

// FakeRaceRepo only implements what rivalries need; other methods panic
// through the nil embedded interface.
type FakeRaceRepo struct {
	racedb.Repository

	NextRace *racedb.Race
}

func (f *FakeRaceRepo) NextChallengeableRace(ctx context.Context, db bun.IDB) (*racedb.Race, error) {
	if f.NextRace == nil {
		return nil, racedb.ErrNotFound
	}
	return f.NextRace, nil
}

type FakeNotifier struct {
	sent []notifyservice.Notification
}

func (f *FakeNotifier) Notify(ctx context.Context, n notifyservice.Notification) {
	f.sent = append(f.sent, n)
}
