// File: keycache.memory.imp.go

package vouch

import (
	"container/list"
	"context"
	"crypto/ed25519"
	"sync"
	"time"
)

// memoryCacheEntry is the value stored at each list element.
type memoryCacheEntry struct {
	identifier Identifier
	key        ed25519.PublicKey
	expiresAt  time.Time
}

// MemoryKeyCache is an in-memory LRU implementation of KeyCache, capped at
// maxSize entries with oldest-eviction on overflow and move-to-front on
// access. A single mutex serializes every operation; all ops are O(1)
// amortized.
type MemoryKeyCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	order   *list.List // front = most recently used
	index   map[Identifier]*list.Element
}

// NewMemoryKeyCache builds an in-memory LRU key cache. maxSize <= 0 falls
// back to 10000; ttl <= 0 falls back to 300s.
func NewMemoryKeyCache(maxSize int, ttl time.Duration) *MemoryKeyCache {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &MemoryKeyCache{
		maxSize: maxSize,
		ttl:     ttl,
		order:   list.New(),
		index:   make(map[Identifier]*list.Element),
	}
}

// Get returns a miss (and evicts) if the entry is past its expiry,
// otherwise moves the entry to the most-recently-used end.
func (c *MemoryKeyCache) Get(_ context.Context, identifier Identifier) (ed25519.PublicKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[identifier]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*memoryCacheEntry)
	if timeNow().After(entry.expiresAt) {
		c.order.Remove(elem)
		delete(c.index, identifier)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.key, true
}

// Set inserts or updates an entry, evicting the least-recently-used entry
// if the cache is at capacity.
func (c *MemoryKeyCache) Set(_ context.Context, identifier Identifier, key ed25519.PublicKey, ttlSeconds int64) {
	ttl := c.ttl
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[identifier]; ok {
		entry := elem.Value.(*memoryCacheEntry)
		entry.key = key
		entry.expiresAt = timeNow().Add(ttl)
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			old := oldest.Value.(*memoryCacheEntry)
			delete(c.index, old.identifier)
			c.order.Remove(oldest)
		}
	}

	entry := &memoryCacheEntry{identifier: identifier, key: key, expiresAt: timeNow().Add(ttl)}
	elem := c.order.PushFront(entry)
	c.index[identifier] = elem
}

func (c *MemoryKeyCache) Delete(_ context.Context, identifier Identifier) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[identifier]
	if !ok {
		return false
	}
	c.order.Remove(elem)
	delete(c.index, identifier)
	return true
}

func (c *MemoryKeyCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.index = make(map[Identifier]*list.Element)
}

// Len reports the current entry count, mainly for tests and metrics.
func (c *MemoryKeyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
