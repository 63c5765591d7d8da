package cache

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryCache returns an in-process RedisCache with the same key, TTL and Nil semantics.
// Clear accepts the glob patterns Redis SCAN MATCH understands.
func NewMemoryCache() RedisCache {
	return &memoryCache{entries: map[string]memoryEntry{}}
}

func expiry(duration int) time.Time {
	if duration <= 0 {
		return time.Time{}
	}

	return time.Now().Add(time.Duration(duration) * time.Second)
}

// lookup must be called with mu held.
func (m *memoryCache) lookup(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if ok && entry.expired(time.Now()) {
		delete(m.entries, key)

		return memoryEntry{}, false
	}

	return entry, ok
}

func (m *memoryCache) Save(_ context.Context, key string, value any, duration int) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: raw, expiresAt: expiry(duration)}
	m.mu.Unlock()

	return nil
}

func (m *memoryCache) Get(_ context.Context, key string, value any) error {
	m.mu.Lock()
	entry, ok := m.lookup(key)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("failed to get cache value: %w", Nil)
	}

	return decode(entry.value, value)
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	return nil
}

func (m *memoryCache) Clear(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("invalid cache pattern %q: %w", pattern, err)
		}

		if matched {
			delete(m.entries, key)
		}
	}

	return nil
}

func (m *memoryCache) Increment(_ context.Context, key string, window int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.lookup(key)
	if !ok {
		entry = memoryEntry{value: []byte("0"), expiresAt: expiry(window)}
	}

	count, err := strconv.ParseInt(string(entry.value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache value at %q is not a counter: %w", key, err)
	}

	count++
	entry.value = []byte(strconv.FormatInt(count, 10))
	m.entries[key] = entry

	return count, nil
}
