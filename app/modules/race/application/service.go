package raceservice

import (
	"context"
	"log/slog"
	"time"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/clock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "race"

// DefaultLockTTL bounds how long a phase transition may hold a race lock.
const DefaultLockTTL = 30 * time.Second

// RaceService implements the Service interface.
type RaceService struct {
	repo     racedb.Repository
	notifier Notifier
	queue    ScoringQueue
	awards   SeasonAwarder
	locker   lock.Locker
	clock    clock.Clock
	lockTTL  time.Duration
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer
	db       *bun.DB
}

// NewRaceService creates a new RaceService.
func NewRaceService(
	repo racedb.Repository,
	notifier Notifier,
	queue ScoringQueue,
	awards SeasonAwarder,
	locker lock.Locker,
	clk clock.Clock,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *RaceService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	return &RaceService{
		repo:     repo,
		notifier: notifier,
		queue:    queue,
		awards:   awards,
		locker:   locker,
		clock:    clk,
		lockTTL:  DefaultLockTTL,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
	}
}

var _ Service = (*RaceService)(nil)

func (s *RaceService) instruments() telemetry.Instruments {
	return telemetry.Instruments{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}

func (s *RaceService) notify(ctx context.Context, raceID int64, n notifyservice.Notification) {
	if s.notifier == nil {
		return
	}
	s.logger.DebugContext(ctx, "Sending race notification",
		attr.RaceID(raceID),
		attr.String("title", n.Title),
	)
	s.notifier.Notify(ctx, n)
}
