// File: keycache.redis.imp.go

package vouch

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
)

// RedisKeyCache is a distributed KeyCache backend. TTL is enforced by
// Redis itself; read/write failures are logged and treated as a cache
// miss rather than propagated, since a cold cache is always safe to fall
// back to the resolver for.
type RedisKeyCache struct {
	client    *redis.Client
	keyPrefix string
	defaultTTL time.Duration
}

// NewRedisKeyCache wraps an existing *redis.Client rather than dialing
// internally, so callers share one connection pool across every backend
// that needs Redis.
func NewRedisKeyCache(client *redis.Client, defaultTTL time.Duration) *RedisKeyCache {
	if defaultTTL <= 0 {
		defaultTTL = 300 * time.Second
	}
	return &RedisKeyCache{client: client, keyPrefix: "vouch:keycache:", defaultTTL: defaultTTL}
}

func (c *RedisKeyCache) redisKey(identifier Identifier) string {
	return c.keyPrefix + string(identifier)
}

func (c *RedisKeyCache) Get(ctx context.Context, identifier Identifier) (ed25519.PublicKey, bool) {
	raw, err := c.client.Get(ctx, c.redisKey(identifier)).Result()
	if err != nil {
		if err != redis.Nil {
			logx.Errorf("vouch: redis keycache get error for %s: %v", identifier, err)
		}
		return nil, false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		logx.Errorf("vouch: redis keycache corrupt entry for %s", identifier)
		return nil, false
	}
	return ed25519.PublicKey(decoded), true
}

func (c *RedisKeyCache) Set(ctx context.Context, identifier Identifier, key ed25519.PublicKey, ttlSeconds int64) {
	ttl := c.defaultTTL
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	encoded := base64.RawURLEncoding.EncodeToString(key)
	if err := c.client.Set(ctx, c.redisKey(identifier), encoded, ttl).Err(); err != nil {
		logx.Errorf("vouch: redis keycache set error for %s: %v", identifier, err)
	}
}

func (c *RedisKeyCache) Delete(ctx context.Context, identifier Identifier) bool {
	n, err := c.client.Del(ctx, c.redisKey(identifier)).Result()
	if err != nil {
		logx.Errorf("vouch: redis keycache delete error for %s: %v", identifier, err)
		return false
	}
	return n > 0
}

func (c *RedisKeyCache) Clear(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, c.keyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logx.Errorf("vouch: redis keycache clear scan error: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logx.Errorf("vouch: redis keycache clear error: %v", err)
	}
}
