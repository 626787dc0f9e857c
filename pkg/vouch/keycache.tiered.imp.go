// File: keycache.tiered.imp.go

package vouch

import (
	"context"
	"crypto/ed25519"
)

// TieredKeyCache fronts a distributed L2 cache with an in-memory L1: on L1
// miss it checks L2 and populates L1 on hit; sets write through to both
// tiers concurrently.
type TieredKeyCache struct {
	l1 KeyCache
	l2 KeyCache
}

// NewTieredKeyCache composes an L1 (typically *MemoryKeyCache) in front of
// an L2 (typically *RedisKeyCache).
func NewTieredKeyCache(l1, l2 KeyCache) *TieredKeyCache {
	return &TieredKeyCache{l1: l1, l2: l2}
}

func (t *TieredKeyCache) Get(ctx context.Context, identifier Identifier) (ed25519.PublicKey, bool) {
	if key, ok := t.l1.Get(ctx, identifier); ok {
		return key, true
	}
	key, ok := t.l2.Get(ctx, identifier)
	if ok {
		t.l1.Set(ctx, identifier, key, 0)
	}
	return key, ok
}

func (t *TieredKeyCache) Set(ctx context.Context, identifier Identifier, key ed25519.PublicKey, ttlSeconds int64) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.l2.Set(ctx, identifier, key, ttlSeconds)
	}()
	t.l1.Set(ctx, identifier, key, ttlSeconds)
	<-done
}

func (t *TieredKeyCache) Delete(ctx context.Context, identifier Identifier) bool {
	l1Deleted := t.l1.Delete(ctx, identifier)
	l2Deleted := t.l2.Delete(ctx, identifier)
	return l1Deleted || l2Deleted
}

func (t *TieredKeyCache) Clear(ctx context.Context) {
	t.l1.Clear(ctx)
	t.l2.Clear(ctx)
}
