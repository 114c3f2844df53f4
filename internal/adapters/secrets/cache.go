package secrets

import (
	"context"
	"sync"
	"time"

	"github.com/kevin07696/subs-tracker/internal/domain/ports"
)

var _ ports.SecretStore = (*CachedStore)(nil)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// CachedStore wraps a SecretStore with a per-path TTL cache.
// Failed lookups are not cached.
type CachedStore struct {
	next    ports.SecretStore
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedStore caches next's values for ttl; a non-positive ttl disables caching
func NewCachedStore(next ports.SecretStore, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// GetSecret serves from cache while fresh, otherwise asks the wrapped store
func (c *CachedStore) GetSecret(ctx context.Context, path string) (string, error) {
	if c.ttl <= 0 {
		return c.next.GetSecret(ctx, path)
	}

	c.mu.Lock()
	entry, ok := c.entries[path]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := c.next.GetSecret(ctx, path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

// Invalidate drops a cached path, forcing the next read to the backend
func (c *CachedStore) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}
