package teamservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	teamdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "team"

// DefaultLockTTL bounds one roster change holding the season ledger.
const DefaultLockTTL = 30 * time.Second

// TeamService implements the Service interface.
type TeamService struct {
	repo       teamdb.Repository
	ledger     *Ledger
	locker     lock.Locker
	lockTTL    time.Duration
	waitPolicy lock.WaitPolicy
	logger     *slog.Logger
	metrics    observability.OperationMetrics
	tracer     trace.Tracer
	db         *bun.DB
}

// NewTeamService creates a new TeamService. Roster changes share locker
// with race scoring.
func NewTeamService(
	repo teamdb.Repository,
	locker lock.Locker,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	return &TeamService{
		repo:       repo,
		ledger:     NewLedger(repo, logger),
		locker:     locker,
		lockTTL:    DefaultLockTTL,
		waitPolicy: lock.DefaultWaitPolicy,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
	}
}

var _ Service = (*TeamService)(nil)

func (s *TeamService) instruments() telemetry.Instruments {
	return telemetry.Instruments{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}

// lockLedger waits for the season ledger, which a scoring run holds while
// it rewrites bet points.
func (s *TeamService) lockLedger(ctx context.Context, seasonID int64) (lock.Release, error) {
	release, err := lock.Acquire(ctx, s.locker, lock.SeasonLedgerKey(seasonID), s.lockTTL, s.waitPolicy)
	if errors.Is(err, lock.ErrHeld) {
		return nil, ErrLedgerBusy
	}
	return release, err
}

func (s *TeamService) unlockLedger(ctx context.Context, seasonID int64, release lock.Release) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		s.logger.WarnContext(ctx, "Failed to release ledger lock", attr.SeasonID(seasonID), attr.Error(err))
	}
}

// Ledger returns the team points ledger.
func (s *TeamService) Ledger() *Ledger {
	return s.ledger
}

func (s *TeamService) GetTeam(ctx context.Context, teamID int64) (*teamdb.Team, error) {
	team, err := s.repo.GetTeam(ctx, nil, teamID)
	if errors.Is(err, teamdb.ErrNotFound) {
		return nil, ErrTeamNotFound
	}
	return team, err
}

func (s *TeamService) TeamIDForUser(ctx context.Context, db bun.IDB, seasonID, userID int64) (*int64, error) {
	team, err := s.repo.FindTeamForUser(ctx, db, seasonID, userID)
	if err != nil {
		if errors.Is(err, teamdb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve team for user %d: %w", userID, err)
	}
	id := team.ID
	return &id, nil
}
