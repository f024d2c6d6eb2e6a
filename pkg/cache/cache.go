package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by Get when the key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")
	// ErrLockTimeout is returned by AcquireLock when the key stayed locked
	// for the whole wait.
	ErrLockTimeout = errors.New("lock wait timeout")
)

// Lock is a held lease on a key. Token identifies the holder so an expired
// lease taken over by someone else is never released by the old holder.
type Lock struct {
	Key        string
	Token      string
	Expiration time.Duration
	AcquiredAt time.Time
}

type Locker interface {
	// TryLock returns (nil, nil) when the key is held by someone else.
	TryLock(ctx context.Context, key string, expiration time.Duration) (*Lock, error)
	Unlock(ctx context.Context, lock *Lock) error
}

// AcquireLock polls TryLock every interval until it succeeds, wait elapses
// or ctx ends.
func AcquireLock(ctx context.Context, locker Locker, key string, expiration, wait, interval time.Duration) (*Lock, error) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	deadline := time.NewTimer(wait)
	defer deadline.Stop()

	for {
		lock, err := locker.TryLock(ctx, key, expiration)
		if err != nil {
			return nil, err
		}
		if lock != nil {
			return lock, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrLockTimeout
		case <-time.After(interval):
		}
	}
}
