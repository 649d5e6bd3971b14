package badgeservice

import (
	"log/slog"

	badgedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "badge"

// BadgeService implements the Service interface.
type BadgeService struct {
	repo      badgedb.Repository
	standings StandingsSource
	notifier  Notifier
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
}

// NewBadgeService creates a new BadgeService. notifier may be nil.
func NewBadgeService(
	repo badgedb.Repository,
	standings StandingsSource,
	notifier Notifier,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *BadgeService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &BadgeService{
		repo:      repo,
		standings: standings,
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

var _ Service = (*BadgeService)(nil)

func (s *BadgeService) instruments() telemetry.Instruments {
	return telemetry.Instruments{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}
