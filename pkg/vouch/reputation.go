// File: reputation.go

package vouch

import (
	"context"
	"fmt"
)

// ReputationStore is the storage backend for raw scores, stats, and event
// history. ReputationEngine applies scoring rules, decay, and tiering on
// top of a store.
type ReputationStore interface {
	GetScore(ctx context.Context, identifier Identifier) (int, error)
	SetScore(ctx context.Context, identifier Identifier, score int) error
	AddEvent(ctx context.Context, event ReputationEvent) error
	GetEvents(ctx context.Context, identifier Identifier, limit int) ([]ReputationEvent, error)
	GetStats(ctx context.Context, identifier Identifier) (ReputationStats, error)
}

// ReputationStats is the success/failure bookkeeping kept alongside the raw
// score, used to compute SuccessRate and to decide when decay applies.
type ReputationStats struct {
	TotalActions int
	Successes    int
	Failures     int
	SuccessRate  float64
	LastActionAt int64
}

// ReputationEngine maintains per-identifier trust scores with bounded
// history and decay, on top of a pluggable ReputationStore.
type ReputationEngine struct {
	store        ReputationStore
	baseline     int
	decayWindow  int64 // seconds
	decayRate    int   // points per idle day, counting every day since the last action once decayWindow has passed
	historyLimit int
}

// NewReputationEngine builds an engine. baseline defaults to 50,
// decayWindowDays to 7, and decayRatePerDay to 1 when given as zero; history
// reads are capped at 1000 events.
func NewReputationEngine(store ReputationStore, baseline int, decayWindowDays int, decayRatePerDay int) *ReputationEngine {
	if baseline <= 0 {
		baseline = 50
	}
	if decayWindowDays <= 0 {
		decayWindowDays = 7
	}
	if decayRatePerDay <= 0 {
		decayRatePerDay = 1
	}
	return &ReputationEngine{
		store:        store,
		baseline:     baseline,
		decayWindow:  int64(decayWindowDays) * 86400,
		decayRate:    decayRatePerDay,
		historyLimit: 1000,
	}
}

// GetScore applies decay (if the identifier has been inactive past the
// decay window) before returning the read-model.
func (e *ReputationEngine) GetScore(ctx context.Context, identifier Identifier) (ReputationScore, error) {
	raw, err := e.store.GetScore(ctx, identifier)
	if err != nil {
		return ReputationScore{}, err
	}
	stats, err := e.store.GetStats(ctx, identifier)
	if err != nil {
		return ReputationScore{}, err
	}

	score := raw
	decayApplied := false
	if stats.LastActionAt > 0 {
		idleSeconds := unixNow() - stats.LastActionAt
		if idleSeconds > e.decayWindow {
			idleDays := idleSeconds / 86400
			pull := int(idleDays) * e.decayRate
			score = decayToward(score, e.baseline, pull)
			decayApplied = true
		}
	}

	return ReputationScore{
		Identifier:   identifier,
		Score:        clampScore(score),
		Tier:         TierFor(clampScore(score)),
		TotalActions: stats.TotalActions,
		SuccessRate:  stats.SuccessRate,
		LastActionAt: stats.LastActionAt,
		DecayApplied: decayApplied,
	}, nil
}

// decayToward pulls score toward target by at most pull points.
func decayToward(score, target, pull int) int {
	if score == target || pull <= 0 {
		return score
	}
	if score > target {
		score -= pull
		if score < target {
			score = target
		}
		return score
	}
	score += pull
	if score > target {
		score = target
	}
	return score
}

func (e *ReputationEngine) mutate(ctx context.Context, identifier Identifier, action ReputationActionKind, delta int, reason string, metadata map[string]any) (ReputationScore, error) {
	current, err := e.store.GetScore(ctx, identifier)
	if err != nil {
		return ReputationScore{}, err
	}
	next := clampScore(current + delta)
	if err := e.store.SetScore(ctx, identifier, next); err != nil {
		return ReputationScore{}, err
	}

	event := ReputationEvent{
		Identifier: identifier,
		Action:     action,
		Delta:      delta,
		Reason:     reason,
		Timestamp:  unixNow(),
		Metadata:   metadata,
	}
	if err := e.store.AddEvent(ctx, event); err != nil {
		return ReputationScore{}, err
	}

	return e.GetScore(ctx, identifier)
}

// RecordSuccess applies the +1 success delta.
func (e *ReputationEngine) RecordSuccess(ctx context.Context, identifier Identifier, reason string, metadata map[string]any) (ReputationScore, error) {
	return e.mutate(ctx, identifier, ActionSuccess, 1, reason, metadata)
}

// RecordFailure applies the -2 failure delta.
func (e *ReputationEngine) RecordFailure(ctx context.Context, identifier Identifier, reason string, metadata map[string]any) (ReputationScore, error) {
	return e.mutate(ctx, identifier, ActionFailure, -2, reason, metadata)
}

// Boost applies an explicit positive delta.
func (e *ReputationEngine) Boost(ctx context.Context, identifier Identifier, amount int, reason string) (ReputationScore, error) {
	if amount < 0 {
		amount = -amount
	}
	return e.mutate(ctx, identifier, ActionBoost, amount, reason, nil)
}

// Slash applies an explicit negative delta.
func (e *ReputationEngine) Slash(ctx context.Context, identifier Identifier, amount int, reason string) (ReputationScore, error) {
	if amount > 0 {
		amount = -amount
	}
	return e.mutate(ctx, identifier, ActionSlash, amount, reason, nil)
}

// GetHistory returns up to limit most-recent events (default 100, bounded
// store-side retention at 1000).
func (e *ReputationEngine) GetHistory(ctx context.Context, identifier Identifier, limit int) ([]ReputationEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > e.historyLimit {
		limit = e.historyLimit
	}
	return e.store.GetEvents(ctx, identifier, limit)
}

// Reset restores an identifier to the baseline score with no history
// change beyond whatever the store itself records; calling Reset twice in
// a row is idempotent.
func (e *ReputationEngine) Reset(ctx context.Context, identifier Identifier) error {
	if err := e.store.SetScore(ctx, identifier, e.baseline); err != nil {
		return fmt.Errorf("vouch: reset reputation for %s: %w", identifier, err)
	}
	return nil
}
