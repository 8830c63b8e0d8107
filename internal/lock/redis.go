package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures lock behavior.
type RedisOptions struct {
	// Expiry is how long the lock is held before auto-expiring, which bounds
	// how long a crashed replica can block a network.
	Expiry time.Duration

	// Tries is the number of attempts to acquire the lock before giving up.
	Tries int

	// RetryDelay is the delay between attempts.
	RetryDelay time.Duration
}

// DefaultRedisOptions returns defaults sized for a commit transaction that
// finishes within a few seconds.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 100 * time.Millisecond,
	}
}

// Redis is a distributed lock shared by every replica using the same Redis.
type Redis struct {
	redsync *redsync.Redsync
	opts    RedisOptions
}

var _ Locker = (*Redis)(nil)

// NewRedis creates a distributed lock backed by client.
func NewRedis(client redis.UniversalClient, opts RedisOptions) *Redis {
	pool := goredis.NewPool(client)
	return &Redis{
		redsync: redsync.New(pool),
		opts:    opts,
	}
}

// WithLock runs fn while holding key across all replicas.
func (r *Redis) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := r.redsync.NewMutex(
		key,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	slog.Debug("Lock acquired", "key", key)

	defer func() {
		// Release even if ctx already expired
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			slog.Warn("Failed to release lock", "key", key, "ok", ok, "error", err)
		}
	}()

	return fn(ctx)
}
