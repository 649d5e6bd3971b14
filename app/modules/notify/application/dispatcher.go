package notifyservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const serviceName = "notify"

// Audience selects who receives a notification.
type Audience struct {
	Broadcast bool    `json:"broadcast"`
	UserIDs   []int64 `json:"user_ids,omitempty"`
}

// Everyone targets every subscribed user.
func Everyone() Audience { return Audience{Broadcast: true} }

// Users targets the given users only.
func Users(ids ...int64) Audience { return Audience{UserIDs: ids} }

func (a Audience) empty() bool { return !a.Broadcast && len(a.UserIDs) == 0 }

// Notification is the payload handed to the push gateway.
type Notification struct {
	ID        string    `json:"id"`
	Audience  Audience  `json:"audience"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	DeepLink  string    `json:"deep_link"`
	CreatedAt time.Time `json:"created_at"`
}

// Dispatcher publishes notifications on a watermill topic. Delivery is best
// effort: failures are logged and counted, never returned.
type Dispatcher struct {
	publisher message.Publisher
	topic     string
	limiter   *rate.Limiter
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil limiter disables rate limiting.
func NewDispatcher(
	publisher message.Publisher,
	topic string,
	limiter *rate.Limiter,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &Dispatcher{
		publisher: publisher,
		topic:     topic,
		limiter:   limiter,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Notify publishes n. Missing ID and CreatedAt are filled in.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) {
	if err := d.publish(ctx, n); err != nil {
		d.metrics.RecordOperationFailure(ctx, "Notify", serviceName)
		d.logger.WarnContext(ctx, "Notification dropped",
			attr.ExtractCorrelationID(ctx),
			attr.String("title", n.Title),
			attr.Error(err),
		)
		return
	}
	d.metrics.RecordOperationSuccess(ctx, "Notify", serviceName)
}

func (d *Dispatcher) publish(ctx context.Context, n Notification) error {
	d.metrics.RecordOperationAttempt(ctx, "Notify", serviceName)

	if d.tracer != nil {
		var span trace.Span
		ctx, span = d.tracer.Start(ctx, "Notify", trace.WithAttributes(
			attribute.String("topic", d.topic),
			attribute.String("title", n.Title),
		))
		defer span.End()
	}

	if d.publisher == nil {
		return fmt.Errorf("no publisher configured")
	}
	if n.Audience.empty() {
		return fmt.Errorf("notification %q has no audience", n.Title)
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now().UTC()
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("notification_id", n.ID)
	if n.Audience.Broadcast {
		msg.Metadata.Set("audience", "broadcast")
	} else {
		msg.Metadata.Set("audience", "users")
	}
	msg.SetContext(ctx)

	if err := d.publisher.Publish(d.topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", d.topic, err)
	}

	d.logger.DebugContext(ctx, "Notification published",
		attr.String("topic", d.topic),
		attr.String("notification_id", n.ID),
		attr.String("title", n.Title),
	)
	return nil
}
