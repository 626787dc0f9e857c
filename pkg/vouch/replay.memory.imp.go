// File: replay.memory.imp.go

package vouch

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

type replayEntry struct {
	id        string
	expiresAt time.Time
}

// MemoryReplayGuard is an in-memory implementation of ReplayGuard, capped
// at maxSize with oldest-eviction on overflow (counted as Evicted) and a
// periodic background sweep of expired entries.
type MemoryReplayGuard struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	index   map[string]*list.Element

	evicted uint64

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// NewMemoryReplayGuard starts a background goroutine sweeping expired
// entries every cleanupInterval (default 60s).
func NewMemoryReplayGuard(maxSize int, cleanupInterval time.Duration) *MemoryReplayGuard {
	if maxSize <= 0 {
		maxSize = 100000
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 60 * time.Second
	}
	g := &MemoryReplayGuard{
		maxSize:     maxSize,
		order:       list.New(),
		index:       make(map[string]*list.Element),
		stopCleanup: make(chan struct{}),
	}
	go g.cleanupLoop(cleanupInterval)
	return g
}

func (g *MemoryReplayGuard) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n, err := g.CleanupExpired(context.Background()); err == nil && n > 0 {
				logx.Infof("vouch: replay guard cleanup removed %d expired entries", n)
			}
		case <-g.stopCleanup:
			return
		}
	}
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (g *MemoryReplayGuard) Close() {
	g.cleanupOnce.Do(func() {
		close(g.stopCleanup)
	})
}

func (g *MemoryReplayGuard) IsUsed(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	elem, ok := g.index[id]
	if !ok {
		return false, nil
	}
	entry := elem.Value.(*replayEntry)
	if timeNow().After(entry.expiresAt) {
		g.order.Remove(elem)
		delete(g.index, id)
		return false, nil
	}
	return true, nil
}

func (g *MemoryReplayGuard) MarkUsed(_ context.Context, id string, expiresAtUnix int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	expiresAt := time.Unix(expiresAtUnix, 0)

	if elem, ok := g.index[id]; ok {
		entry := elem.Value.(*replayEntry)
		if timeNow().Before(entry.expiresAt) {
			return false, nil // already used and not yet expired
		}
		// expired entry reused for the same id: treat as fresh mark
		entry.expiresAt = expiresAt
		g.order.MoveToFront(elem)
		return true, nil
	}

	if g.order.Len() >= g.maxSize {
		oldest := g.order.Back()
		if oldest != nil {
			old := oldest.Value.(*replayEntry)
			delete(g.index, old.id)
			g.order.Remove(oldest)
			g.evicted++
		}
	}

	entry := &replayEntry{id: id, expiresAt: expiresAt}
	elem := g.order.PushFront(entry)
	g.index[id] = elem
	return true, nil
}

func (g *MemoryReplayGuard) CleanupExpired(_ context.Context) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := timeNow()
	removed := 0
	for elem := g.order.Back(); elem != nil; {
		entry := elem.Value.(*replayEntry)
		prev := elem.Prev()
		if now.After(entry.expiresAt) {
			g.order.Remove(elem)
			delete(g.index, entry.id)
			removed++
		}
		elem = prev
	}
	return removed, nil
}

// Stats reports current size and lifetime eviction count, for tests and
// operational introspection.
func (g *MemoryReplayGuard) Stats() (size int, evicted uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.order.Len(), g.evicted
}
