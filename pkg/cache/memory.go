package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is a single-process stand-in for RedisCache with the same
// JSON and lock semantics.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) expiry(expiration time.Duration) time.Time {
	if expiration <= 0 {
		return time.Time{}
	}
	return m.now().Add(expiration)
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{data: data, expiresAt: m.expiry(expiration)}
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && entry.expired(m.now()) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *MemoryCache) TryLock(ctx context.Context, key string, expiration time.Duration) (*Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if entry, ok := m.entries[key]; ok && !entry.expired(now) {
		return nil, nil
	}

	lock := &Lock{
		Key:        key,
		Token:      uuid.NewString(),
		Expiration: expiration,
		AcquiredAt: now,
	}
	m.entries[key] = memoryEntry{data: []byte(lock.Token), expiresAt: m.expiry(expiration)}
	return lock, nil
}

func (m *MemoryCache) Unlock(ctx context.Context, lock *Lock) error {
	if lock == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[lock.Key]; ok && string(entry.data) == lock.Token {
		delete(m.entries, lock.Key)
	}
	return nil
}

func (m *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryCache) Close() error {
	return nil
}
