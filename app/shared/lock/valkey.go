package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// Deletes the key only while it still carries our token, so a holder whose
// TTL lapsed cannot release somebody else's lock.
var releaseScript = valkey.NewLuaScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ValkeyLocker implements Locker with SET NX EX on a valkey/redis server.
type ValkeyLocker struct {
	client valkey.Client
	logger *slog.Logger
}

var _ Locker = (*ValkeyLocker)(nil)

func NewValkeyLocker(client valkey.Client, logger *slog.Logger) *ValkeyLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValkeyLocker{client: client, logger: logger}
}

func (v *ValkeyLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	if ttl < time.Second {
		ttl = time.Second
	}
	token := uuid.NewString()

	cmd := v.client.B().Set().Key(key).Value(token).Nx().Ex(ttl).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		if isNil(err) {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("set lock %s failed: %w", key, err)
	}
	v.logger.DebugContext(ctx, "lock_acquired", slog.String("key", key))

	return func(ctx context.Context) error {
		if err := releaseScript.Exec(ctx, v.client, []string{key}, []string{token}).Error(); err != nil {
			return fmt.Errorf("release lock %s failed: %w", key, err)
		}
		v.logger.DebugContext(ctx, "lock_released", slog.String("key", key))
		return nil
	}, nil
}

func isNil(err error) bool {
	for err != nil {
		if valkey.IsValkeyNil(err) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
