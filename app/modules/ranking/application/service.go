package rankingservice

import (
	"log/slog"
	"time"

	rankingdb "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/lock"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ranking"

// DefaultLockTTL bounds one cache rebuild.
const DefaultLockTTL = time.Minute

// RankingService implements the Service interface.
type RankingService struct {
	repo       rankingdb.Repository
	locker     lock.Locker
	lockTTL    time.Duration
	waitPolicy lock.WaitPolicy
	logger     *slog.Logger
	metrics    observability.OperationMetrics
	tracer     trace.Tracer
	db         *bun.DB
}

// NewRankingService creates a new RankingService.
func NewRankingService(
	repo rankingdb.Repository,
	locker lock.Locker,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *RankingService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	return &RankingService{
		repo:       repo,
		locker:     locker,
		lockTTL:    DefaultLockTTL,
		waitPolicy: lock.DefaultWaitPolicy,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
	}
}

var _ Service = (*RankingService)(nil)

func (s *RankingService) instruments() telemetry.Instruments {
	return telemetry.Instruments{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}
