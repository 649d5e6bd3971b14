package badgeservice

import (
	"context"
	"slices"
	"sync"

	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Badge Repo
// ------------------------

// FakeBadgeRepo keeps achievements and grants in memory and enforces the
// same grant uniqueness as the database indexes.
type FakeBadgeRepo struct {
	trace []string

	UserRaceStatsFunc func(ctx context.Context, db bun.IDB, userID, raceID int64) (*badgedomain.RaceStats, error)
	GrantOnceErr      error

	achievements []badgedb.Achievement
	grants       []badgedb.UserAchievement
}

func NewFakeBadgeRepo(achievements ...badgedb.Achievement) *FakeBadgeRepo {
	return &FakeBadgeRepo{trace: []string{}, achievements: achievements}
}

func (f *FakeBadgeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeBadgeRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeBadgeRepo) Grants() []badgedb.UserAchievement {
	return append([]badgedb.UserAchievement(nil), f.grants...)
}

func (f *FakeBadgeRepo) CreateAchievement(ctx context.Context, db bun.IDB, a *badgedb.Achievement) error {
	f.record("CreateAchievement")
	a.ID = int64(len(f.achievements) + 1)
	f.achievements = append(f.achievements, *a)
	return nil
}

func (f *FakeBadgeRepo) GetAchievementByCode(ctx context.Context, db bun.IDB, code string) (*badgedb.Achievement, error) {
	f.record("GetAchievementByCode")
	for _, a := range f.achievements {
		if a.Code == code {
			return &a, nil
		}
	}
	return nil, badgedb.ErrNotFound
}

func (f *FakeBadgeRepo) ListAchievements(ctx context.Context, db bun.IDB) ([]badgedb.Achievement, error) {
	f.record("ListAchievements")
	return append([]badgedb.Achievement(nil), f.achievements...), nil
}

func (f *FakeBadgeRepo) ListByKinds(ctx context.Context, db bun.IDB, kinds []badgedomain.RuleKind) ([]badgedb.Achievement, error) {
	f.record("ListByKinds")
	var out []badgedb.Achievement
	for _, a := range f.achievements {
		if slices.Contains(kinds, a.RuleType) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeBadgeRepo) ListUnheld(ctx context.Context, db bun.IDB, userID int64, kinds []badgedomain.RuleKind) ([]badgedb.Achievement, error) {
	f.record("ListUnheld")
	var out []badgedb.Achievement
	for _, a := range f.achievements {
		if !slices.Contains(kinds, a.RuleType) {
			continue
		}
		held := slices.ContainsFunc(f.grants, func(g badgedb.UserAchievement) bool {
			return g.UserID == userID && g.AchievementID == a.ID
		})
		if !held {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeBadgeRepo) UserRaceStats(ctx context.Context, db bun.IDB, userID, raceID int64) (*badgedomain.RaceStats, error) {
	f.record("UserRaceStats")
	if f.UserRaceStatsFunc != nil {
		return f.UserRaceStatsFunc(ctx, db, userID, raceID)
	}
	return nil, badgedb.ErrNotFound
}

func (f *FakeBadgeRepo) GrantOnce(ctx context.Context, db bun.IDB, grant *badgedb.UserAchievement) (bool, error) {
	f.record("GrantOnce")
	if f.GrantOnceErr != nil {
		return false, f.GrantOnceErr
	}
	for _, g := range f.grants {
		if g.UserID != grant.UserID || g.AchievementID != grant.AchievementID {
			continue
		}
		if g.SeasonID == nil && grant.SeasonID == nil {
			return false, nil
		}
		if g.SeasonID != nil && grant.SeasonID != nil && *g.SeasonID == *grant.SeasonID {
			return false, nil
		}
	}
	grant.ID = int64(len(f.grants) + 1)
	f.grants = append(f.grants, *grant)
	return true, nil
}

func (f *FakeBadgeRepo) ListUserAchievements(ctx context.Context, db bun.IDB, userID int64, unseenOnly bool) ([]badgedb.UserAchievement, error) {
	f.record("ListUserAchievements")
	var out []badgedb.UserAchievement
	for _, g := range f.grants {
		if g.UserID == userID && (!unseenOnly || !g.Seen) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *FakeBadgeRepo) MarkSeen(ctx context.Context, db bun.IDB, userID int64, ids []int64) (int, error) {
	f.record("MarkSeen")
	n := 0
	for i := range f.grants {
		if f.grants[i].UserID == userID && slices.Contains(ids, f.grants[i].ID) {
			f.grants[i].Seen = true
			n++
		}
	}
	return n, nil
}

// ------------------------
// Fake collaborators
// ------------------------

type FakeStandings struct {
	Standings rankingdomain.Standings
	Err       error
	calls     []int64
}

func (f *FakeStandings) ComputeStandings(ctx context.Context, seasonID int64) (rankingdomain.Standings, error) {
	f.calls = append(f.calls, seasonID)
	s := f.Standings
	s.SeasonID = seasonID
	return s, f.Err
}

type FakeNotifier struct {
	mu   sync.Mutex
	sent []notifyservice.Notification
}

func (f *FakeNotifier) Notify(ctx context.Context, n notifyservice.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

func (f *FakeNotifier) Sent() []notifyservice.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifyservice.Notification(nil), f.sent...)
}
