// File: reputation.redis.imp.go

package vouch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"
)

// RedisReputationStore is a distributed ReputationStore suitable for
// high-RPS reads, backing scores, stats, and bounded event history with
// plain Redis keys rather than a dedicated time-series store.
type RedisReputationStore struct {
	client       *redis.Client
	keyPrefix    string
	defaultScore int
	historyLimit int64
}

func NewRedisReputationStore(client *redis.Client, defaultScore int) *RedisReputationStore {
	if defaultScore <= 0 {
		defaultScore = 50
	}
	return &RedisReputationStore{client: client, keyPrefix: "vouch:reputation:", defaultScore: defaultScore, historyLimit: 999}
}

func (s *RedisReputationStore) scoreKey(id Identifier) string  { return s.keyPrefix + "score:" + string(id) }
func (s *RedisReputationStore) statsKey(id Identifier) string  { return s.keyPrefix + "stats:" + string(id) }
func (s *RedisReputationStore) eventsKey(id Identifier) string { return s.keyPrefix + "events:" + string(id) }

func (s *RedisReputationStore) GetScore(ctx context.Context, identifier Identifier) (int, error) {
	raw, err := s.client.Get(ctx, s.scoreKey(identifier)).Result()
	if err == redis.Nil {
		return s.defaultScore, nil
	}
	if err != nil {
		logx.Errorf("vouch: redis reputation get_score error for %s: %v", identifier, err)
		return s.defaultScore, nil
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return s.defaultScore, nil
	}
	return score, nil
}

func (s *RedisReputationStore) SetScore(ctx context.Context, identifier Identifier, score int) error {
	if err := s.client.Set(ctx, s.scoreKey(identifier), clampScore(score), 0).Err(); err != nil {
		logx.Errorf("vouch: redis reputation set_score error for %s: %v", identifier, err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisReputationStore) AddEvent(ctx context.Context, event ReputationEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("vouch: marshal reputation event: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.eventsKey(event.Identifier), raw)
	pipe.LTrim(ctx, s.eventsKey(event.Identifier), 0, s.historyLimit)
	pipe.HSet(ctx, s.statsKey(event.Identifier), "last_action_at", event.Timestamp)
	switch event.Action {
	case ActionSuccess:
		pipe.HIncrBy(ctx, s.statsKey(event.Identifier), "successes", 1)
	case ActionFailure:
		pipe.HIncrBy(ctx, s.statsKey(event.Identifier), "failures", 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		logx.Errorf("vouch: redis reputation add_event error for %s: %v", event.Identifier, err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisReputationStore) GetEvents(ctx context.Context, identifier Identifier, limit int) ([]ReputationEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	raw, err := s.client.LRange(ctx, s.eventsKey(identifier), 0, int64(limit-1)).Result()
	if err != nil {
		logx.Errorf("vouch: redis reputation get_events error for %s: %v", identifier, err)
		return nil, nil
	}
	events := make([]ReputationEvent, 0, len(raw))
	for _, item := range raw {
		var event ReputationEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *RedisReputationStore) GetStats(ctx context.Context, identifier Identifier) (ReputationStats, error) {
	raw, err := s.client.HGetAll(ctx, s.statsKey(identifier)).Result()
	if err != nil {
		logx.Errorf("vouch: redis reputation get_stats error for %s: %v", identifier, err)
		return ReputationStats{}, nil
	}
	successes, _ := strconv.Atoi(raw["successes"])
	failures, _ := strconv.Atoi(raw["failures"])
	lastAction, _ := strconv.ParseInt(raw["last_action_at"], 10, 64)

	total := successes + failures
	rate := 0.0
	if total > 0 {
		rate = float64(successes) / float64(total)
	}
	return ReputationStats{
		TotalActions: total,
		Successes:    successes,
		Failures:     failures,
		SuccessRate:  rate,
		LastActionAt: lastAction,
	}, nil
}
