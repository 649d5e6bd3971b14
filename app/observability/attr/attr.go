// Package attr provides typed slog attribute helpers so log keys stay
// consistent across modules.
package attr

import (
	"context"
	"log/slog"
	"time"
)

type correlationKey struct{}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Float64(key string, value float64) slog.Attr { return slog.Float64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func RaceID(id int64) slog.Attr { return slog.Int64("race_id", id) }

func SeasonID(id int64) slog.Attr { return slog.Int64("season_id", id) }

func UserID(id int64) slog.Attr { return slog.Int64("user_id", id) }

func TeamID(id int64) slog.Attr { return slog.Int64("team_id", id) }

// WithCorrelationID stores an identifier that ties together every log line
// emitted while handling one job or tick.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// ExtractCorrelationID returns the correlation attribute stored on ctx, or an
// empty attribute that slog drops.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	if ctx == nil {
		return slog.Attr{}
	}
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return slog.String("correlation_id", id)
	}
	return slog.Attr{}
}
