package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Black-And-White-Club/pitwall-bot/config"
	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger. Output always goes to stdout; when
// cfg.Dir is set it is also written to a size-rotated file in that directory.
func NewLogger(cfg config.LoggingConfig, level string, fileName string) (*slog.Logger, io.Closer, error) {
	opts := &tint.Options{
		Level:      ParseLevel(level),
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}

	logDir := strings.TrimSpace(cfg.Dir)
	if logDir == "" {
		return slog.New(tint.NewHandler(os.Stdout, opts)), nopCloser{}, nil
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir failed: %w", err)
	}

	logFile := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	// Colour codes would end up in the file.
	opts.NoColor = true
	logger := slog.New(tint.NewHandler(io.MultiWriter(os.Stdout, logFile), opts))
	logger.Info("file_logging_enabled", slog.String("path", logFile.Filename))
	return logger, logFile, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
