package racequeue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	raceservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/application"
	scoringservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/application"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScorer struct {
	calls []int64
	fn    func(ctx context.Context, raceID int64) (*scoringservice.RaceScoringSummary, error)
}

func (f *fakeScorer) CalculateRacePoints(ctx context.Context, raceID int64) (*scoringservice.RaceScoringSummary, error) {
	f.calls = append(f.calls, raceID)
	return f.fn(ctx, raceID)
}

func newJob(raceID, resultID int64) *river.Job[ScoreRaceJob] {
	return &river.Job[ScoreRaceJob]{
		JobRow: &rivertype.JobRow{ID: 99, Attempt: 1, Kind: ScoreRaceJob{}.Kind()},
		Args:   ScoreRaceJob{RaceID: raceID, ResultID: resultID},
	}
}

func TestScoreRaceWorker_Work(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("success", func(t *testing.T) {
		scorer := &fakeScorer{fn: func(ctx context.Context, raceID int64) (*scoringservice.RaceScoringSummary, error) {
			return &scoringservice.RaceScoringSummary{RaceID: raceID, Processed: 3}, nil
		}}
		w := NewScoreRaceWorker(logger, scorer, time.Second, 0)

		require.NoError(t, w.Work(context.Background(), newJob(5, 50)))
		assert.Equal(t, []int64{5}, scorer.calls)
	})

	t.Run("locked race is snoozed", func(t *testing.T) {
		scorer := &fakeScorer{fn: func(ctx context.Context, raceID int64) (*scoringservice.RaceScoringSummary, error) {
			return nil, scoringservice.ErrRecalculationInProgress
		}}
		w := NewScoreRaceWorker(logger, scorer, 20*time.Second, 0)

		err := w.Work(context.Background(), newJob(5, 50))
		var snooze *rivertype.JobSnoozeError
		require.ErrorAs(t, err, &snooze)
		assert.Equal(t, 20*time.Second, snooze.Duration)
	})

	t.Run("missing result cancels", func(t *testing.T) {
		scorer := &fakeScorer{fn: func(ctx context.Context, raceID int64) (*scoringservice.RaceScoringSummary, error) {
			return nil, scoringservice.ErrResultMissing
		}}
		w := NewScoreRaceWorker(logger, scorer, time.Second, 0)

		err := w.Work(context.Background(), newJob(5, 50))
		var cancel *rivertype.JobCancelError
		require.ErrorAs(t, err, &cancel)
		assert.ErrorIs(t, err, scoringservice.ErrResultMissing)
	})

	t.Run("infrastructure error is retried", func(t *testing.T) {
		boom := errors.New("connection reset")
		scorer := &fakeScorer{fn: func(ctx context.Context, raceID int64) (*scoringservice.RaceScoringSummary, error) {
			return nil, boom
		}}
		w := NewScoreRaceWorker(logger, scorer, time.Second, 0)

		err := w.Work(context.Background(), newJob(5, 50))
		assert.ErrorIs(t, err, boom)
		var cancel *rivertype.JobCancelError
		assert.False(t, errors.As(err, &cancel))
	})
}

func TestScoreRaceWorker_Timeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scorer := &fakeScorer{}

	assert.Equal(t, scoringservice.DefaultLockTTL, NewScoreRaceWorker(logger, scorer, 0, 0).Timeout(newJob(5, 50)),
		"default job timeout matches the default scoring lock TTL")
	assert.Equal(t, 3*time.Minute, NewScoreRaceWorker(logger, scorer, 0, 3*time.Minute).Timeout(newJob(5, 50)))
}

func TestScoreRaceJob_Kind(t *testing.T) {
	assert.Equal(t, "score_race", ScoreRaceJob{}.Kind())
}

func TestCloseSeasonWorker_Work(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	job := &river.Job[CloseSeasonJob]{
		JobRow: &rivertype.JobRow{ID: 7, Attempt: 1, Kind: CloseSeasonJob{}.Kind()},
		Args:   CloseSeasonJob{SeasonID: 3},
	}

	tests := []struct {
		name       string
		err        error
		wantCancel bool
		wantErr    bool
	}{
		{name: "closes the season"},
		{name: "finished season cancels", err: raceservice.ErrSeasonAlreadyFinished, wantCancel: true, wantErr: true},
		{name: "unknown season cancels", err: raceservice.ErrSeasonNotFound, wantCancel: true, wantErr: true},
		{name: "storage failure retries", err: errors.New("deadlock detected"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			w := NewCloseSeasonWorker(logger, SeasonCloserFunc(func(ctx context.Context, seasonID int64) (int, error) {
				got = append(got, seasonID)
				return 4, tt.err
			}))

			err := w.Work(context.Background(), job)
			assert.Equal(t, []int64{3}, got)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var cancel *rivertype.JobCancelError
			assert.Equal(t, tt.wantCancel, errors.As(err, &cancel))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
