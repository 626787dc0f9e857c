// File: keycache_test.go

package vouch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryKeyCache_SetAndGet(t *testing.T) {
	cache := NewMemoryKeyCache(10, time.Minute)
	kp := mustIdentity(t, "id:web:a.example.com")

	cache.Set(context.Background(), kp.Identifier, kp.Public, 0)
	got, ok := cache.Get(context.Background(), kp.Identifier)
	require.True(t, ok)
	require.Equal(t, kp.Public, got)
}

func TestMemoryKeyCache_EvictsLeastRecentlyUsedOnOverflow(t *testing.T) {
	cache := NewMemoryKeyCache(2, time.Minute)
	ctx := context.Background()

	a := mustIdentity(t, "id:web:a.example.com")
	b := mustIdentity(t, "id:web:b.example.com")
	c := mustIdentity(t, "id:web:c.example.com")

	cache.Set(ctx, a.Identifier, a.Public, 0)
	cache.Set(ctx, b.Identifier, b.Public, 0)
	// touch a so b becomes the least-recently-used entry
	_, _ = cache.Get(ctx, a.Identifier)
	cache.Set(ctx, c.Identifier, c.Public, 0)

	_, ok := cache.Get(ctx, b.Identifier)
	require.False(t, ok, "b should have been evicted as least-recently-used")

	_, ok = cache.Get(ctx, a.Identifier)
	require.True(t, ok)
	_, ok = cache.Get(ctx, c.Identifier)
	require.True(t, ok)
	require.Equal(t, 2, cache.Len())
}

func TestMemoryKeyCache_ExpiresByTTL(t *testing.T) {
	cache := NewMemoryKeyCache(10, time.Millisecond)
	kp := mustIdentity(t, "id:web:a.example.com")
	ctx := context.Background()

	cache.Set(ctx, kp.Identifier, kp.Public, 0)
	time.Sleep(5 * time.Millisecond)

	_, ok := cache.Get(ctx, kp.Identifier)
	require.False(t, ok)
}

func TestMemoryKeyCache_DeleteAndClear(t *testing.T) {
	cache := NewMemoryKeyCache(10, time.Minute)
	kp := mustIdentity(t, "id:web:a.example.com")
	ctx := context.Background()

	cache.Set(ctx, kp.Identifier, kp.Public, 0)
	require.True(t, cache.Delete(ctx, kp.Identifier))
	require.False(t, cache.Delete(ctx, kp.Identifier))

	cache.Set(ctx, kp.Identifier, kp.Public, 0)
	cache.Clear(ctx)
	require.Equal(t, 0, cache.Len())
}
