package tenant_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primecut/brokerage/internal/tenant"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		tn := &tenant.Tenant{ID: uuid.New(), Slug: "acme"}

		cache.Set(ctx, "slug:acme", tn, time.Minute)

		got, ok := cache.Get(ctx, "slug:acme")
		require.True(t, ok)
		assert.Equal(t, tn.ID, got.ID)
	})

	t.Run("miss on unknown key", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		_, ok := cache.Get(ctx, "slug:nope")
		assert.False(t, ok)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		cache.Set(ctx, "slug:acme", &tenant.Tenant{ID: uuid.New()}, time.Nanosecond)
		time.Sleep(5 * time.Millisecond)

		_, ok := cache.Get(ctx, "slug:acme")
		assert.False(t, ok)
	})

	t.Run("negative entries are cacheable", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		cache.Set(ctx, "domain:unknown.example.com", nil, time.Minute)

		got, ok := cache.Get(ctx, "domain:unknown.example.com")
		assert.True(t, ok)
		assert.Nil(t, got)
	})

	t.Run("delete evicts", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		cache.Set(ctx, "slug:acme", &tenant.Tenant{ID: uuid.New()}, time.Minute)
		cache.Delete(ctx, "slug:acme")

		_, ok := cache.Get(ctx, "slug:acme")
		assert.False(t, ok)
	})

	t.Run("non-positive ttl stores nothing", func(t *testing.T) {
		t.Parallel()

		cache := tenant.NewMemoryCache()
		cache.Set(ctx, "slug:acme", &tenant.Tenant{ID: uuid.New()}, 0)

		_, ok := cache.Get(ctx, "slug:acme")
		assert.False(t, ok)
	})
}
