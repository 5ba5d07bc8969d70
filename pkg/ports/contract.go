package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockerContract runs a suite of tests to verify that a DistributedLocker implementation
// adheres to the defined interface contract.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000000000")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err, "Lock should not return error")
		require.NotNil(t, unlock)

		require.NoError(t, unlock(ctx), "Unlock should not return error")

		// Reacquire after release.
		unlock, err = locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err, "Lock after Unlock should succeed")
		require.NoError(t, unlock(ctx))
	})

	t.Run("Exclusive", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, key, 5*time.Second)
		assert.Error(t, err, "second Lock on a held key must block until the context ends")

		require.NoError(t, unlock(ctx))
	})

	t.Run("Independent keys", func(t *testing.T) {
		unlockA, err := locker.Lock(ctx, key+"-a", 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlockA(ctx) }()

		unlockB, err := locker.Lock(ctx, key+"-b", 5*time.Second)
		require.NoError(t, err, "different keys must not contend")
		require.NoError(t, unlockB(ctx))
	})

	t.Run("Handoff", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(1)
		acquired := make(chan struct{})
		go func() {
			defer wg.Done()
			next, err := locker.Lock(ctx, key, 5*time.Second)
			if assert.NoError(t, err) {
				close(acquired)
				_ = next(ctx)
			}
		}()

		select {
		case <-acquired:
			t.Fatal("lock acquired while still held")
		case <-time.After(200 * time.Millisecond):
		}

		require.NoError(t, unlock(ctx))
		wg.Wait()
	})
}
