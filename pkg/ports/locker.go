package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes task runs across capstan processes sharing a backend.
// lock.Manager takes it after its in-process mutex for the same key.
type DistributedLocker interface {
	// Lock acquires key, usually the recipe name or the --lock-key of `capstan serve`,
	// and holds it for at most ttl. It waits until the key is free or ctx is done.
	// The returned UnlockFunc must be called once the run finishes.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
