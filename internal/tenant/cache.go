package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores tenants looked up by domain or slug during resolution.
// Header and default-membership lookups never go through the cache, so a
// revoked membership takes effect on the next request.
type Cache interface {
	// Get retrieves a tenant from cache by key.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a tenant in cache with the given TTL.
	Set(ctx context.Context, key string, t *Tenant, ttl time.Duration)

	// Delete removes a tenant from cache.
	Delete(ctx context.Context, key string)
}

// NoOpCache disables caching; every lookup goes to the store.
type NoOpCache struct{}

func (NoOpCache) Get(context.Context, string) (*Tenant, bool)          { return nil, false }
func (NoOpCache) Set(context.Context, string, *Tenant, time.Duration) {}
func (NoOpCache) Delete(context.Context, string)                       {}

// memoryCache is the default in-process cache with TTL expiry.
type memoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryCacheItem
}

type memoryCacheItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// NewMemoryCache creates the default in-memory cache.
func NewMemoryCache() Cache {
	return &memoryCache{items: make(map[string]memoryCacheItem)}
}

func (c *memoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// refreshed the entry meanwhile.
		if current, ok := c.items[key]; ok && time.Now().After(current.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return item.tenant, true
}

func (c *memoryCache) Set(_ context.Context, key string, t *Tenant, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = memoryCacheItem{tenant: t, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
