// File: reputation.stream.imp.go

package vouch

import (
	"context"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"
)

// StreamReputationStore is an event-stream + kv hybrid backend: score
// reads/writes go straight through a synchronous kv (a
// RedisReputationStore), while events are additionally pushed onto a
// bounded channel drained by a background goroutine for fire-and-forget
// publishing, so a write never blocks on the publish side.
type StreamReputationStore struct {
	sync     *RedisReputationStore
	publish  chan ReputationEvent
	sink     func(ReputationEvent)
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewStreamReputationStore wraps sync (the fast read/write path) with an
// async event-publish pipeline. sink is called for each event from the
// background goroutine; pass nil to only rely on the synchronous store's
// own AddEvent, which is still invoked on every call for consistency.
func NewStreamReputationStore(sync *RedisReputationStore, bufferSize int, sink func(ReputationEvent)) *StreamReputationStore {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	s := &StreamReputationStore{
		sync:    sync,
		publish: make(chan ReputationEvent, bufferSize),
		sink:    sink,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *StreamReputationStore) drain() {
	defer close(s.done)
	for {
		select {
		case event := <-s.publish:
			if s.sink != nil {
				s.sink(event)
			}
		case <-s.stop:
			return
		}
	}
}

// Close stops the background publisher. Safe to call multiple times.
func (s *StreamReputationStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
}

func (s *StreamReputationStore) GetScore(ctx context.Context, identifier Identifier) (int, error) {
	return s.sync.GetScore(ctx, identifier)
}

func (s *StreamReputationStore) SetScore(ctx context.Context, identifier Identifier, score int) error {
	return s.sync.SetScore(ctx, identifier, score)
}

// AddEvent publishes fire-and-forget to the async sink and, for immediate
// consistency, also writes through to the synchronous store.
func (s *StreamReputationStore) AddEvent(ctx context.Context, event ReputationEvent) error {
	select {
	case s.publish <- event:
	default:
		logx.Errorf("vouch: reputation event publish buffer full, dropping async publish for %s", event.Identifier)
	}
	return s.sync.AddEvent(ctx, event)
}

func (s *StreamReputationStore) GetEvents(ctx context.Context, identifier Identifier, limit int) ([]ReputationEvent, error) {
	return s.sync.GetEvents(ctx, identifier, limit)
}

func (s *StreamReputationStore) GetStats(ctx context.Context, identifier Identifier) (ReputationStats, error) {
	return s.sync.GetStats(ctx, identifier)
}
