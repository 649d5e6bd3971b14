package racequeue

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	raceservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/application"
	scoringservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/application"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/riverqueue/river"
)

// RaceScorer is the scoring entry point the worker drives.
type RaceScorer interface {
	CalculateRacePoints(ctx context.Context, raceID int64) (*scoringservice.RaceScoringSummary, error)
}

// ScoreRaceWorker runs race scoring. A race locked by another scorer is
// snoozed rather than failed; a race or result that no longer exists
// cancels the job.
type ScoreRaceWorker struct {
	river.WorkerDefaults[ScoreRaceJob]

	scorer  RaceScorer
	logger  *slog.Logger
	snooze  time.Duration
	timeout time.Duration
}

// NewScoreRaceWorker builds the scoring worker. timeout should match the
// scorer's lock TTL; zero uses scoringservice.DefaultLockTTL.
func NewScoreRaceWorker(logger *slog.Logger, scorer RaceScorer, snooze, timeout time.Duration) *ScoreRaceWorker {
	if snooze <= 0 {
		snooze = 15 * time.Second
	}
	if timeout <= 0 {
		timeout = scoringservice.DefaultLockTTL
	}
	return &ScoreRaceWorker{
		scorer:  scorer,
		logger:  logger,
		snooze:  snooze,
		timeout: timeout,
	}
}

func (w *ScoreRaceWorker) Timeout(*river.Job[ScoreRaceJob]) time.Duration {
	return w.timeout
}

func (w *ScoreRaceWorker) Work(ctx context.Context, job *river.Job[ScoreRaceJob]) error {
	ctx = attr.WithCorrelationID(ctx, "river-job-"+strconv.FormatInt(job.ID, 10))
	logger := w.logger.With(
		attr.RaceID(job.Args.RaceID),
		attr.Int64("result_id", job.Args.ResultID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)

	logger.InfoContext(ctx, "Scoring race")

	summary, err := w.scorer.CalculateRacePoints(ctx, job.Args.RaceID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Race scored",
			attr.Int("bets_processed", summary.Processed),
			attr.Int("bets_reversed", summary.Reversed),
			attr.Int("badges_granted", summary.BadgesGranted),
			attr.Int("rivalries_resolved", summary.RivalriesResolved),
		)
		return nil
	case errors.Is(err, scoringservice.ErrRecalculationInProgress):
		logger.InfoContext(ctx, "Race is being scored elsewhere, snoozing", attr.Duration("snooze", w.snooze))
		return river.JobSnooze(w.snooze)
	case errors.Is(err, scoringservice.ErrRaceNotFound), errors.Is(err, scoringservice.ErrResultMissing):
		logger.WarnContext(ctx, "Race cannot be scored, cancelling job", attr.Error(err))
		return river.JobCancel(err)
	default:
		logger.ErrorContext(ctx, "Race scoring failed, will retry", attr.Error(err))
		return err
	}
}

// SeasonCloser finishes a season after granting its awards.
type SeasonCloser interface {
	CloseSeason(ctx context.Context, seasonID int64) (int, error)
}

// SeasonCloserFunc adapts a function to SeasonCloser.
type SeasonCloserFunc func(ctx context.Context, seasonID int64) (int, error)

func (f SeasonCloserFunc) CloseSeason(ctx context.Context, seasonID int64) (int, error) {
	return f(ctx, seasonID)
}

// CloseSeasonWorker runs season close. A season that is unknown or already
// finished cancels the job.
type CloseSeasonWorker struct {
	river.WorkerDefaults[CloseSeasonJob]

	seasons SeasonCloser
	logger  *slog.Logger
}

func NewCloseSeasonWorker(logger *slog.Logger, seasons SeasonCloser) *CloseSeasonWorker {
	return &CloseSeasonWorker{seasons: seasons, logger: logger}
}

func (w *CloseSeasonWorker) Work(ctx context.Context, job *river.Job[CloseSeasonJob]) error {
	ctx = attr.WithCorrelationID(ctx, "river-job-"+strconv.FormatInt(job.ID, 10))
	logger := w.logger.With(
		attr.SeasonID(job.Args.SeasonID),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)

	granted, err := w.seasons.CloseSeason(ctx, job.Args.SeasonID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Season closed", attr.Int("awards_granted", granted))
		return nil
	case errors.Is(err, raceservice.ErrSeasonNotFound), errors.Is(err, raceservice.ErrSeasonAlreadyFinished):
		logger.WarnContext(ctx, "Season cannot be closed, cancelling job", attr.Error(err))
		return river.JobCancel(err)
	default:
		logger.ErrorContext(ctx, "Season close failed, will retry", attr.Error(err))
		return err
	}
}
