package teamservice

import (
	"context"

	teamdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Team Repo
// ------------------------

type FakeTeamRepo struct {
	trace []string

	CreateTeamFunc            func(ctx context.Context, db bun.IDB, team *teamdb.Team) error
	GetTeamFunc               func(ctx context.Context, db bun.IDB, teamID int64) (*teamdb.Team, error)
	GetTeamForUpdateFunc      func(ctx context.Context, db bun.IDB, teamID int64) (*teamdb.Team, error)
	FindTeamForUserFunc       func(ctx context.Context, db bun.IDB, seasonID, userID int64) (*teamdb.Team, error)
	ListTeamsBySeasonFunc     func(ctx context.Context, db bun.IDB, seasonID int64) ([]teamdb.Team, error)
	SetPartnerFunc            func(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error)
	ClearPartnerFunc          func(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error)
	AddPointsFunc             func(ctx context.Context, db bun.IDB, teamID int64, points int) error
	SubtractPointsClampedFunc func(ctx context.Context, db bun.IDB, teamID int64, points int) error
	SumContributedPointsFunc  func(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error)
	DetachBetsFunc            func(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error)
}

func NewFakeTeamRepo() *FakeTeamRepo {
	return &FakeTeamRepo{trace: []string{}}
}

func (f *FakeTeamRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTeamRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeTeamRepo) CreateTeam(ctx context.Context, db bun.IDB, team *teamdb.Team) error {
	f.record("CreateTeam")
	if f.CreateTeamFunc != nil {
		return f.CreateTeamFunc(ctx, db, team)
	}
	return nil
}

func (f *FakeTeamRepo) GetTeam(ctx context.Context, db bun.IDB, teamID int64) (*teamdb.Team, error) {
	f.record("GetTeam")
	if f.GetTeamFunc != nil {
		return f.GetTeamFunc(ctx, db, teamID)
	}
	return nil, teamdb.ErrNotFound
}

func (f *FakeTeamRepo) GetTeamForUpdate(ctx context.Context, db bun.IDB, teamID int64) (*teamdb.Team, error) {
	f.record("GetTeamForUpdate")
	if f.GetTeamForUpdateFunc != nil {
		return f.GetTeamForUpdateFunc(ctx, db, teamID)
	}
	return nil, teamdb.ErrNotFound
}

func (f *FakeTeamRepo) FindTeamForUser(ctx context.Context, db bun.IDB, seasonID, userID int64) (*teamdb.Team, error) {
	f.record("FindTeamForUser")
	if f.FindTeamForUserFunc != nil {
		return f.FindTeamForUserFunc(ctx, db, seasonID, userID)
	}
	return nil, teamdb.ErrNotFound
}

func (f *FakeTeamRepo) ListTeamsBySeason(ctx context.Context, db bun.IDB, seasonID int64) ([]teamdb.Team, error) {
	f.record("ListTeamsBySeason")
	if f.ListTeamsBySeasonFunc != nil {
		return f.ListTeamsBySeasonFunc(ctx, db, seasonID)
	}
	return nil, nil
}

func (f *FakeTeamRepo) SetPartner(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error) {
	f.record("SetPartner")
	if f.SetPartnerFunc != nil {
		return f.SetPartnerFunc(ctx, db, teamID, userID)
	}
	return true, nil
}

func (f *FakeTeamRepo) ClearPartner(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error) {
	f.record("ClearPartner")
	if f.ClearPartnerFunc != nil {
		return f.ClearPartnerFunc(ctx, db, teamID, userID)
	}
	return true, nil
}

func (f *FakeTeamRepo) AddPoints(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	f.record("AddPoints")
	if f.AddPointsFunc != nil {
		return f.AddPointsFunc(ctx, db, teamID, points)
	}
	return nil
}

func (f *FakeTeamRepo) SubtractPointsClamped(ctx context.Context, db bun.IDB, teamID int64, points int) error {
	f.record("SubtractPointsClamped")
	if f.SubtractPointsClampedFunc != nil {
		return f.SubtractPointsClampedFunc(ctx, db, teamID, points)
	}
	return nil
}

func (f *FakeTeamRepo) SumContributedPoints(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error) {
	f.record("SumContributedPoints")
	if f.SumContributedPointsFunc != nil {
		return f.SumContributedPointsFunc(ctx, db, userID, teamID)
	}
	return 0, nil
}

func (f *FakeTeamRepo) DetachBets(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error) {
	f.record("DetachBets")
	if f.DetachBetsFunc != nil {
		return f.DetachBetsFunc(ctx, db, userID, teamID)
	}
	return 0, nil
}

var _ teamdb.Repository = (*FakeTeamRepo)(nil)

// teamTable wires a FakeTeamRepo to one in-memory team and its partner's
// contributed points, applying ledger writes the way the SQL does.
type teamTable struct {
	team        teamdb.Team
	contributed map[int64]int
}

func (tt *teamTable) wire(f *FakeTeamRepo) {
	load := func(ctx context.Context, db bun.IDB, teamID int64) (*teamdb.Team, error) {
		if teamID != tt.team.ID {
			return nil, teamdb.ErrNotFound
		}
		cp := tt.team
		return &cp, nil
	}
	f.GetTeamFunc = load
	f.GetTeamForUpdateFunc = load
	f.FindTeamForUserFunc = func(ctx context.Context, db bun.IDB, seasonID, userID int64) (*teamdb.Team, error) {
		if seasonID != tt.team.SeasonID {
			return nil, teamdb.ErrNotFound
		}
		for _, m := range tt.team.Members() {
			if m == userID {
				cp := tt.team
				return &cp, nil
			}
		}
		return nil, teamdb.ErrNotFound
	}
	f.SubtractPointsClampedFunc = func(ctx context.Context, db bun.IDB, teamID int64, points int) error {
		tt.team.TotalPoints = max(tt.team.TotalPoints-points, 0)
		return nil
	}
	f.AddPointsFunc = func(ctx context.Context, db bun.IDB, teamID int64, points int) error {
		tt.team.TotalPoints += points
		return nil
	}
	f.SumContributedPointsFunc = func(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error) {
		return tt.contributed[userID], nil
	}
	f.DetachBetsFunc = func(ctx context.Context, db bun.IDB, userID, teamID int64) (int, error) {
		if tt.contributed[userID] == 0 {
			return 0, nil
		}
		delete(tt.contributed, userID)
		return 1, nil
	}
	f.ClearPartnerFunc = func(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error) {
		if tt.team.PartnerID == nil || *tt.team.PartnerID != userID {
			return false, nil
		}
		tt.team.PartnerID = nil
		return true, nil
	}
	f.SetPartnerFunc = func(ctx context.Context, db bun.IDB, teamID, userID int64) (bool, error) {
		if tt.team.PartnerID != nil {
			return false, nil
		}
		tt.team.PartnerID = &userID
		return true, nil
	}
}
