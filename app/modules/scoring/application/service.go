package scoringservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	scoringdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/clock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "scoring"

// DefaultLockTTL bounds a full scoring run of one race. The run is
// cancelled when it expires so it never outlives its locks.
const DefaultLockTTL = 10 * time.Minute

// ScoringService implements the Service interface.
type ScoringService struct {
	bets    scoringdb.Repository
	races   racedb.Repository
	ledger  TeamLedger
	teams   TeamDirectory
	hooks   Hooks
	locker  lock.Locker
	clock   clock.Clock
	lockTTL time.Duration
	wait    lock.WaitPolicy
	logger  *slog.Logger
	metrics observability.OperationMetrics
	tracer  trace.Tracer
	db      *bun.DB
}

// NewScoringService creates a new ScoringService. A zero lockTTL uses
// DefaultLockTTL.
func NewScoringService(
	bets scoringdb.Repository,
	races racedb.Repository,
	ledger TeamLedger,
	teams TeamDirectory,
	hooks Hooks,
	locker lock.Locker,
	clk clock.Clock,
	lockTTL time.Duration,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ScoringService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &ScoringService{
		bets:    bets,
		races:   races,
		ledger:  ledger,
		teams:   teams,
		hooks:   hooks,
		locker:  locker,
		clock:   clk,
		lockTTL: lockTTL,
		wait:    lock.DefaultWaitPolicy,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
	}
}

var _ Service = (*ScoringService)(nil)

func (s *ScoringService) instruments() telemetry.Instruments {
	return telemetry.Instruments{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}

// lockRace takes the per-race writer lock shared with the race scheduler.
func (s *ScoringService) lockRace(ctx context.Context, raceID int64) (lock.Release, error) {
	release, err := s.locker.TryAcquire(ctx, lock.RaceKey(raceID), s.lockTTL)
	if errors.Is(err, lock.ErrHeld) {
		return nil, ErrRecalculationInProgress
	}
	return release, err
}

// lockLedger waits for the season ledger so no roster change can move a
// bet between the rollback and recompute phases.
func (s *ScoringService) lockLedger(ctx context.Context, seasonID int64) (lock.Release, error) {
	release, err := lock.Acquire(ctx, s.locker, lock.SeasonLedgerKey(seasonID), s.lockTTL, s.wait)
	if errors.Is(err, lock.ErrHeld) {
		return nil, ErrRecalculationInProgress
	}
	return release, err
}

func (s *ScoringService) unlockLedger(ctx context.Context, seasonID int64, release lock.Release) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.WarnContext(ctx, "Failed to release ledger lock", attr.SeasonID(seasonID), attr.Error(err))
	}
}

func (s *ScoringService) unlockRace(ctx context.Context, raceID int64, release lock.Release) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.WarnContext(ctx, "Failed to release race lock", attr.RaceID(raceID), attr.Error(err))
	}
}
