// Package lock serializes settlement commits per network.
//
// Two implementations are provided:
//
//	lock.NewLocal()                 // single process, keyed mutex
//	lock.NewRedis(client, opts)     // across replicas, RedLock via redsync
//
// Both honour context deadlines while waiting, so a commit that cannot get
// its lock in time fails instead of queueing forever.
package lock

import "context"

// Locker runs fn while holding the lock identified by key.
// The lock is released when fn returns, even on panic.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// NetworkKey returns the lock key guarding commits for a network.
func NetworkKey(networkID string) string {
	return "settle:network:" + networkID
}
