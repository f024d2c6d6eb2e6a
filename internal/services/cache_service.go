package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltycard/pkg/cache"
	"loyaltycard/pkg/logger"
)

// CacheBackend is satisfied by cache.RedisCache and cache.MemoryCache.
type CacheBackend interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	cache.Locker
}

type CacheService interface {
	// Basic cache operations
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Lock operations
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// LockOptions bounds WithLock. TTL must outlive the work done under the lock.
type LockOptions struct {
	TTL      time.Duration
	Wait     time.Duration
	Interval time.Duration
}

type cacheService struct {
	backend    CacheBackend
	lock       LockOptions
	defaultTTL time.Duration
	logger     *logger.Logger
}

func NewCacheService(backend CacheBackend, lock LockOptions, defaultTTL time.Duration, logger *logger.Logger) CacheService {
	return &cacheService{
		backend:    backend,
		lock:       lock,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if err := s.backend.Get(ctx, key, dest); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return err
		}
		return fmt.Errorf("failed to get cache key %s: %w", key, err)
	}

	s.logger.WithField("cache_key", key).Debug("Cache hit")
	return nil
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration == 0 {
		expiration = s.defaultTTL
	}

	if err := s.backend.Set(ctx, key, value, expiration); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}

	s.logger.WithField("cache_key", key).
		WithField("expiration", expiration).
		Debug("Cache set")

	return nil
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	if err := s.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}

	s.logger.WithField("cache_keys", keys).Debug("Cache keys deleted")
	return nil
}

// WithLock runs fn while holding key. It returns cache.ErrLockTimeout when the
// key stayed held for the whole wait.
func (s *cacheService) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock, err := cache.AcquireLock(ctx, s.backend, key, s.lock.TTL, s.lock.Wait, s.lock.Interval)
	if err != nil {
		return err
	}

	defer func() {
		if err := s.backend.Unlock(context.WithoutCancel(ctx), lock); err != nil {
			s.logger.WithError(err).WithField("lock_key", key).Warn("Failed to release lock")
		}
	}()

	err = fn(ctx)
	if held := time.Since(lock.AcquiredAt); s.lock.TTL > 0 && held > s.lock.TTL {
		s.logger.WithField("lock_key", key).
			WithField("held", held).
			Warn("Lock expired before the work finished")
	}
	return err
}
