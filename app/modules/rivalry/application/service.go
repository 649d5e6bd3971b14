package rivalryservice

import (
	"log/slog"

	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
	rivalrydb "github.com/Black-And-White-Club/pitwall-bot/app/modules/rivalry/infrastructure/repositories"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/telemetry"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "rivalry"

// RivalryService implements the Service interface.
type RivalryService struct {
	repo     rivalrydb.Repository
	races    racedb.Repository
	notifier Notifier
	logger   *slog.Logger
	metrics  observability.OperationMetrics
	tracer   trace.Tracer
	db       *bun.DB
}

// NewRivalryService creates a new RivalryService. notifier may be nil.
func NewRivalryService(
	repo rivalrydb.Repository,
	races racedb.Repository,
	notifier Notifier,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *RivalryService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &RivalryService{
		repo:     repo,
		races:    races,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
	}
}

var _ Service = (*RivalryService)(nil)

func (s *RivalryService) instruments() telemetry.Instruments {
	return telemetry.Instruments{
		Service: serviceName,
		Logger:  s.logger,
		Metrics: s.metrics,
		Tracer:  s.tracer,
	}
}
