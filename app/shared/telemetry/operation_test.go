package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/pitwall-bot/app/observability"
	"github.com/Black-And-White-Club/pitwall-bot/app/shared/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

type countingMetrics struct {
	observability.NoopMetrics
	attempts, successes, failures int
}

func (m *countingMetrics) RecordOperationAttempt(context.Context, string, string) { m.attempts++ }
func (m *countingMetrics) RecordOperationSuccess(context.Context, string, string) { m.successes++ }
func (m *countingMetrics) RecordOperationFailure(context.Context, string, string) { m.failures++ }

func testInstruments(m observability.OperationMetrics) Instruments {
	return Instruments{
		Service: "TestService",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: m,
		Tracer:  noop.NewTracerProvider().Tracer("test"),
	}
}

func TestWithTelemetry(t *testing.T) {
	errBoom := errors.New("boom")
	errDomain := errors.New("domain says no")

	tests := []struct {
		name          string
		op            OperationFunc[int, error]
		wantErr       bool
		wantFailure   bool
		wantSuccesses int
		wantFailures  int
	}{
		{
			name: "success",
			op: func(ctx context.Context) (results.OperationResult[int, error], error) {
				return results.SuccessResult[int, error](3), nil
			},
			wantSuccesses: 1,
		},
		{
			name: "domain failure still counts as completed",
			op: func(ctx context.Context) (results.OperationResult[int, error], error) {
				return results.FailureResult[int, error](errDomain), nil
			},
			wantFailure:   true,
			wantSuccesses: 1,
		},
		{
			name: "infrastructure error",
			op: func(ctx context.Context) (results.OperationResult[int, error], error) {
				return results.OperationResult[int, error]{}, errBoom
			},
			wantErr:      true,
			wantFailures: 1,
		},
		{
			name: "panic is recovered",
			op: func(ctx context.Context) (results.OperationResult[int, error], error) {
				panic("kaboom")
			},
			wantErr:      true,
			wantFailures: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &countingMetrics{}
			result, err := WithTelemetry(context.Background(), testInstruments(m), "Op", "id-1", tt.op)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantFailure, result.IsFailure())
			assert.Equal(t, 1, m.attempts)
			assert.Equal(t, tt.wantSuccesses, m.successes)
			assert.Equal(t, tt.wantFailures, m.failures)
		})
	}
}

func TestRunInTx_NilDBPassesNilHandle(t *testing.T) {
	called := false
	result, err := RunInTx(context.Background(), nil, func(ctx context.Context, db bun.IDB) (results.OperationResult[string, error], error) {
		called = true
		assert.Nil(t, db)
		return results.SuccessResult[string, error]("ok"), nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", *result.Success)
}

func TestUnwrap(t *testing.T) {
	errDomain := errors.New("not found")

	v, err := Unwrap(results.SuccessResult[int, error](5), nil)
	assert.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = Unwrap(results.FailureResult[int, error](errDomain), nil)
	assert.ErrorIs(t, err, errDomain)

	_, err = Unwrap(results.OperationResult[int, error]{}, errors.New("db down"))
	assert.EqualError(t, err, "db down")
}
