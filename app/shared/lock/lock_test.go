package lock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"
)

func newTestValkeyLocker(t *testing.T) (*ValkeyLocker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		mr.Close()
		t.Fatalf("valkey client create failed: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return NewValkeyLocker(client, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestValkeyLocker_MutualExclusion(t *testing.T) {
	l, mr := newTestValkeyLocker(t)
	ctx := context.Background()
	key := RaceKey(42)

	release, err := l.TryAcquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	_, err = l.TryAcquire(ctx, key, 30*time.Second)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists(key))

	release2, err := l.TryAcquire(ctx, key, 30*time.Second)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}

func TestValkeyLocker_ExpiredHolderCannotReleaseNewOwner(t *testing.T) {
	l, mr := newTestValkeyLocker(t)
	ctx := context.Background()
	key := SeasonRankingKey(7)

	staleRelease, err := l.TryAcquire(ctx, key, 2*time.Second)
	require.NoError(t, err)

	mr.FastForward(3 * time.Second)
	assert.False(t, mr.Exists(key))

	freshRelease, err := l.TryAcquire(ctx, key, 30*time.Second)
	require.NoError(t, err)

	require.NoError(t, staleRelease(ctx))
	assert.True(t, mr.Exists(key), "stale release must not delete the new owner's lock")

	require.NoError(t, freshRelease(ctx))
	assert.False(t, mr.Exists(key))
}

func TestMemoryLocker(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC)
	l.nowFn = func() time.Time { return now }
	ctx := context.Background()

	release, err := l.TryAcquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, l.Held("k"))

	_, err = l.TryAcquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	now = now.Add(2 * time.Minute)
	assert.False(t, l.Held("k"), "lock should lapse after its ttl")

	release2, err := l.TryAcquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// the first holder's token is gone; releasing it must not free the new owner
	require.NoError(t, release(ctx))
	assert.True(t, l.Held("k"))

	require.NoError(t, release2(ctx))
	assert.False(t, l.Held("k"))
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	first, err := l.TryAcquire(ctx, "season", time.Minute)
	require.NoError(t, err)

	var got atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		release, err := Acquire(ctx, l, "season", time.Minute, WaitPolicy{
			InitialInterval: 5 * time.Millisecond,
			MaxInterval:     20 * time.Millisecond,
			MaxElapsedTime:  5 * time.Second,
		})
		if err == nil {
			got.Store(true)
			_ = release(ctx)
		}
	}()

	time.Sleep(30 * time.Millisecond)
	assert.False(t, got.Load())
	require.NoError(t, first(ctx))

	wg.Wait()
	assert.True(t, got.Load())
}

type brokenLocker struct{ calls int }

func (b *brokenLocker) TryAcquire(context.Context, string, time.Duration) (Release, error) {
	b.calls++
	return nil, errors.New("connection refused")
}

func TestAcquire_PermanentErrorStopsRetrying(t *testing.T) {
	b := &brokenLocker{}
	_, err := Acquire(context.Background(), b, "k", time.Minute, DefaultWaitPolicy)
	assert.Error(t, err)
	assert.Equal(t, 1, b.calls)
}

func TestAcquire_GivesUpWhenContextEnds(t *testing.T) {
	l := NewMemoryLocker()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := l.TryAcquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	_, err = Acquire(ctx, l, "k", time.Minute, DefaultWaitPolicy)
	assert.Error(t, err)
}
