package observability

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability groups the logger, metrics and tracing handles that modules
// receive at construction time.
type Observability struct {
	Logger         *slog.Logger
	Metrics        OperationMetrics
	Registry       *prometheus.Registry
	TracerProvider trace.TracerProvider
}

// New wires a prometheus registry with process/go collectors and the global
// otel tracer provider.
func New(logger *slog.Logger) (*Observability, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metrics, err := NewPrometheusMetrics(registry, "pitwall")
	if err != nil {
		return nil, err
	}

	return &Observability{
		Logger:         logger,
		Metrics:        metrics,
		Registry:       registry,
		TracerProvider: otel.GetTracerProvider(),
	}, nil
}

// NewNop returns handles that discard everything; used by tests and CLI tools.
func NewNop() *Observability {
	return &Observability{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:        NewNoop(),
		Registry:       prometheus.NewRegistry(),
		TracerProvider: noop.NewTracerProvider(),
	}
}

// Tracer returns a named tracer from the configured provider.
func (o *Observability) Tracer(name string) trace.Tracer {
	return o.TracerProvider.Tracer(name)
}
