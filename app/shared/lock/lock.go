// Package lock serializes writers per entity (one race, one season ranking)
// across goroutines and processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrHeld is returned when another holder owns the key.
var ErrHeld = errors.New("lock already held")

// Release frees a lock obtained from a Locker. Releasing twice is a no-op.
type Release func(ctx context.Context) error

// Locker hands out exclusive, expiring locks keyed by string.
type Locker interface {
	// TryAcquire takes the lock without waiting, returning ErrHeld when it is
	// owned by someone else.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

func RaceKey(raceID int64) string {
	return fmt.Sprintf("pitwall:lock:race:%d", raceID)
}

func SeasonRankingKey(seasonID int64) string {
	return fmt.Sprintf("pitwall:lock:ranking:%d", seasonID)
}

// SeasonLedgerKey guards the team points of a season. Scoring holds it
// across rollback and recompute; roster changes take it before debiting.
func SeasonLedgerKey(seasonID int64) string {
	return fmt.Sprintf("pitwall:lock:ledger:%d", seasonID)
}

// WaitPolicy bounds how long Acquire keeps retrying a held lock.
type WaitPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultWaitPolicy suits short critical sections such as a ranking rebuild.
var DefaultWaitPolicy = WaitPolicy{
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     2 * time.Second,
	MaxElapsedTime:  2 * time.Minute,
}

// Acquire waits for the lock with exponential backoff. Errors other than
// ErrHeld abort immediately.
func Acquire(ctx context.Context, l Locker, key string, ttl time.Duration, policy WaitPolicy) (Release, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval
	b.MaxElapsedTime = policy.MaxElapsedTime
	b.RandomizationFactor = 0.2

	var release Release
	op := func() error {
		r, err := l.TryAcquire(ctx, key, ttl)
		if err == nil {
			release = r
			return nil
		}
		if errors.Is(err, ErrHeld) {
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	return release, nil
}
