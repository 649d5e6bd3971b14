package racequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// QueueName is the dedicated River queue scoring jobs run on.
const QueueName = "scoring"

const metricsService = "river"

// QueueService interface defines the contract for race job operations
type QueueService interface {
	// EnqueueRaceScoring queues scoring of raceID against resultID.
	EnqueueRaceScoring(ctx context.Context, raceID, resultID int64) error
	// EnqueueSeasonClose queues the close of seasonID.
	EnqueueSeasonClose(ctx context.Context, seasonID int64) error
	// GetRaceJobs returns information about scoring jobs for a race (for debugging)
	GetRaceJobs(ctx context.Context, raceID int64) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts working jobs
	Start(ctx context.Context) error
	// Stop stops working jobs
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Handlers are the services the workers drive.
type Handlers struct {
	Scorer  RaceScorer
	Seasons SeasonCloser
}

// Options size the queue. ScoreTimeout caps one scoring job and should
// equal the scoring lock TTL.
type Options struct {
	MaxWorkers   int
	Snooze       time.Duration
	ScoreTimeout time.Duration
}

// Service handles background scoring jobs using River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics observability.OperationMetrics
}

// NewService creates a new River-based queue service for race scoring
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics observability.OperationMetrics, handlers Handlers, opts Options) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_race_queue_service"),
		attr.String("component", "river_queue"),
	)
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 4
	}

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	ctxLogger.Info("Initializing race queue service")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewScoreRaceWorker(ctxLogger, handlers.Scorer, opts.Snooze, opts.ScoreTimeout))
	if handlers.Seasons != nil {
		river.AddWorker(workers, NewCloseSeasonWorker(ctxLogger, handlers.Seasons))
	}

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
			QueueName:          {MaxWorkers: opts.MaxWorkers},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))

	ctxLogger.Info("Race queue service initialized successfully")
	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)

	s.logger.Info("Starting race queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.metrics.RecordOperationDuration(ctx, "start_service", metricsService, time.Since(start))

	s.logger.Info("Race queue service started successfully")
	return nil
}

// Stop stops the River queue service and closes its pool. Running jobs are
// given until ctx expires to finish.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)

	s.logger.Info("Stopping race queue service")

	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.metrics.RecordOperationDuration(ctx, "stop_service", metricsService, time.Since(start))

	s.logger.Info("Race queue service stopped successfully")
	return nil
}

// Close releases the pool of a service that was never started.
func (s *Service) Close() {
	s.pool.Close()
}

// EnqueueRaceScoring inserts a scoring job. Inserting the same race and
// result twice while the first job is pending yields a single job.
func (s *Service) EnqueueRaceScoring(ctx context.Context, raceID, resultID int64) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_race_scoring", metricsService)

	ctxLogger := s.logger.With(
		attr.RaceID(raceID),
		attr.Int64("result_id", resultID),
		attr.String("operation", "enqueue_race_scoring"),
	)

	jobResult, err := s.client.Insert(ctx, ScoreRaceJob{RaceID: raceID, ResultID: resultID}, &river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 10,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to enqueue race scoring job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_race_scoring", metricsService)
		return fmt.Errorf("failed to enqueue race scoring job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_race_scoring", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_race_scoring", metricsService, time.Since(start))

	ctxLogger.Info("Race scoring job enqueued",
		attr.Int64("job_id", jobResult.Job.ID),
		attr.Bool("duplicate", jobResult.UniqueSkippedAsDuplicate),
	)
	return nil
}

// EnqueueSeasonClose inserts a close-season job on the default queue.
func (s *Service) EnqueueSeasonClose(ctx context.Context, seasonID int64) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_season_close", metricsService)

	ctxLogger := s.logger.With(
		attr.SeasonID(seasonID),
		attr.String("operation", "enqueue_season_close"),
	)

	jobResult, err := s.client.Insert(ctx, CloseSeasonJob{SeasonID: seasonID}, &river.InsertOpts{
		MaxAttempts: 5,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	})
	if err != nil {
		ctxLogger.Error("Failed to enqueue season close job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_season_close", metricsService)
		return fmt.Errorf("failed to enqueue season close job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_season_close", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_season_close", metricsService, time.Since(start))

	ctxLogger.Info("Season close job enqueued",
		attr.Int64("job_id", jobResult.Job.ID),
		attr.Bool("duplicate", jobResult.UniqueSkippedAsDuplicate),
	)
	return nil
}

// GetRaceJobs returns information about scoring jobs for a race (for debugging)
func (s *Service) GetRaceJobs(ctx context.Context, raceID int64) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		CreatedAt   time.Time  `bun:"created_at"`
		Attempt     int16      `bun:"attempt"`
		MaxAttempts int16      `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", ScoreRaceJob{}.Kind()).
		Where("(args->>'race_id')::bigint = ?", raceID).
		Order("created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		s.logger.Error("Failed to query race jobs", attr.Error(err))
		return nil, fmt.Errorf("failed to query race jobs: %w", err)
	}

	out := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		out[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			RaceID:      raceID,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return out, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "health_check", metricsService)

	if s.client == nil {
		s.metrics.RecordOperationFailure(ctx, "health_check", metricsService)
		return fmt.Errorf("river client is nil")
	}

	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Where("state = ?", "available").
		Scan(ctx, &count)
	if err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "health_check", metricsService)
		return fmt.Errorf("queue service health check failed: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "health_check", metricsService)
	s.metrics.RecordOperationDuration(ctx, "health_check", metricsService, time.Since(start))

	s.logger.Debug("Queue service health check passed", attr.Int("available_jobs", count))
	return nil
}
