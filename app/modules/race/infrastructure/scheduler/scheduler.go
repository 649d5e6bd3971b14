package racescheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	raceservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/application"
	"github.com/Black-And-White-Club/pitwall-bot/app/observability/attr"
	"github.com/google/uuid"
)

// DefaultInterval is how often races are checked for due phase changes.
const DefaultInterval = time.Minute

var (
	ErrAlreadyStarted = errors.New("scheduler already started")
	ErrNotStarted     = errors.New("scheduler not started")
)

// Ticker runs one pass over the races.
type Ticker interface {
	ProcessTick(ctx context.Context) (raceservice.TickSummary, error)
}

// Scheduler calls ProcessTick on a fixed interval, starting immediately.
// Ticks run on a single goroutine so they never overlap; a tick that runs
// past the interval delays the next one instead of stacking.
type Scheduler struct {
	ticker   Ticker
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	stopCh chan struct{}
	doneCh chan struct{}
}

func New(ticker Ticker, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		ticker:   ticker,
		interval: interval,
		logger:   logger.With(attr.String("component", "race_scheduler")),
	}
}

// Start launches the loop. ctx bounds every tick; cancelling it stops the
// loop as Stop would.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doneCh != nil {
		return ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(loopCtx, s.stopCh, s.doneCh)

	s.logger.Info("Race scheduler started", attr.Duration("interval", s.interval))
	return nil
}

// Stop signals the loop and waits for the in-flight tick to finish, or for
// ctx to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.doneCh == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	stopCh, doneCh, cancel := s.stopCh, s.doneCh, s.cancel
	s.stopCh, s.doneCh, s.cancel = nil, nil, nil
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		cancel()
		s.logger.Info("Race scheduler stopped")
		return nil
	case <-ctx.Done():
		cancel()
		<-doneCh
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(doneCh)
	}()

	s.runTick(ctx)

	for {
		select {
		case <-ticker.C:
			s.runTick(ctx)
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	ctx = attr.WithCorrelationID(ctx, "tick-"+uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Race tick panicked", attr.Any("panic", r))
		}
	}()

	summary, err := s.ticker.ProcessTick(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Race tick finished with errors",
			attr.ExtractCorrelationID(ctx),
			attr.Int("opened", summary.Opened),
			attr.Int("closed", summary.Closed),
			attr.Error(err),
		)
	}
}
