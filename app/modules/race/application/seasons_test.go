package raceservice

import (
	"context"
	"errors"
	"testing"
	"time"

	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestCreateSeason(t *testing.T) {
	repo := NewFakeRaceRepo()
	repo.CreateSeasonFunc = func(ctx context.Context, db bun.IDB, season *racedb.Season) error {
		season.ID = 4
		return nil
	}
	svc := newTestService(repo, nil, nil, nil, nil, clock.Fixed(time.Now()))

	season, err := svc.CreateSeason(context.Background(), 2027, true)
	require.NoError(t, err)
	assert.Equal(t, int64(4), season.ID)
	assert.True(t, season.IsActive)
	assert.Equal(t, []string{"DeactivateAllSeasons", "CreateSeason"}, repo.Trace())
}

func TestCloseSeason(t *testing.T) {
	tests := []struct {
		name      string
		season    *racedb.Season
		awardErr  error
		wantErrIs error
		wantErr   bool
		wantTrace []string
		wantCount int
	}{
		{
			name:      "grants awards then finishes the season",
			season:    &racedb.Season{ID: 1, Year: 2026, IsActive: true},
			wantTrace: []string{"GetSeason", "FinishSeason"},
			wantCount: 6,
		},
		{
			name:      "unknown season",
			wantErrIs: ErrSeasonNotFound,
			wantTrace: []string{"GetSeason"},
		},
		{
			name:      "finished season is not processed twice",
			season:    &racedb.Season{ID: 1, Year: 2026, IsFinished: true},
			wantErrIs: ErrSeasonAlreadyFinished,
			wantTrace: []string{"GetSeason"},
		},
		{
			name:      "award failure leaves the season open",
			season:    &racedb.Season{ID: 1, Year: 2026, IsActive: true},
			awardErr:  errors.New("statement timeout"),
			wantErr:   true,
			wantTrace: []string{"GetSeason"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRaceRepo()
			if tt.season != nil {
				repo.GetSeasonFunc = func(ctx context.Context, db bun.IDB, seasonID int64) (*racedb.Season, error) {
					return tt.season, nil
				}
			}
			awards := &FakeSeasonAwarder{ProcessFunc: func(ctx context.Context, seasonID int64) (int, error) {
				return 6, tt.awardErr
			}}

			svc := newTestService(repo, nil, nil, awards, nil, clock.Fixed(time.Now()))
			granted, err := svc.CloseSeason(context.Background(), 1)

			switch {
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
				assert.Empty(t, awards.calls)
			case tt.wantErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantCount, granted)
				assert.Equal(t, []int64{1}, awards.calls)
			}
			assert.Equal(t, tt.wantTrace, repo.Trace())
		})
	}
}
