// File: reputation_test.go

package vouch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReputation_DefaultScoreIsBaseline(t *testing.T) {
	engine := NewReputationEngine(NewMemoryReputationStore(50), 50, 7, 1)
	score, err := engine.GetScore(context.Background(), "id:web:agent.example.com")
	require.NoError(t, err)
	require.Equal(t, 50, score.Score)
	require.Equal(t, TierNeutral, score.Tier)
	require.False(t, score.DecayApplied)
}

func TestReputation_SuccessAndFailureDeltas(t *testing.T) {
	ctx := context.Background()
	engine := NewReputationEngine(NewMemoryReputationStore(50), 50, 7, 1)
	id := Identifier("id:web:agent.example.com")

	score, err := engine.RecordSuccess(ctx, id, "completed", nil)
	require.NoError(t, err)
	require.Equal(t, 51, score.Score)

	score, err = engine.RecordFailure(ctx, id, "timed out", nil)
	require.NoError(t, err)
	require.Equal(t, 49, score.Score)
	require.Equal(t, 2, score.TotalActions)
	require.InDelta(t, 0.5, score.SuccessRate, 0.001)
}

func TestReputation_ScoreClampsToBounds(t *testing.T) {
	ctx := context.Background()
	engine := NewReputationEngine(NewMemoryReputationStore(50), 50, 7, 1)
	id := Identifier("id:web:agent.example.com")

	score, err := engine.Boost(ctx, id, 1000, "over the top")
	require.NoError(t, err)
	require.Equal(t, 100, score.Score)
	require.Equal(t, TierExceptional, score.Tier)

	score, err = engine.Slash(ctx, id, 1000, "way under")
	require.NoError(t, err)
	require.Equal(t, 0, score.Score)
	require.Equal(t, TierUntrusted, score.Tier)
}

func TestReputation_ResetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine := NewReputationEngine(NewMemoryReputationStore(50), 50, 7, 1)
	id := Identifier("id:web:agent.example.com")

	_, err := engine.Boost(ctx, id, 40, "bonus")
	require.NoError(t, err)

	require.NoError(t, engine.Reset(ctx, id))
	score, err := engine.GetScore(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 50, score.Score)

	require.NoError(t, engine.Reset(ctx, id))
	score, err = engine.GetScore(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 50, score.Score)
}

func TestReputation_HistoryIsBoundedAndOrdered(t *testing.T) {
	ctx := context.Background()
	engine := NewReputationEngine(NewMemoryReputationStore(50), 50, 7, 1)
	id := Identifier("id:web:agent.example.com")

	for i := 0; i < 5; i++ {
		_, err := engine.RecordSuccess(ctx, id, "ping", nil)
		require.NoError(t, err)
	}

	events, err := engine.GetHistory(ctx, id, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i := 1; i < len(events); i++ {
		require.GreaterOrEqual(t, events[i-1].Timestamp, events[i].Timestamp, "history is newest first")
	}
	for _, e := range events {
		require.Equal(t, ActionSuccess, e.Action)
		require.Equal(t, 1, e.Delta)
	}
}

func TestReputation_TierBoundaries(t *testing.T) {
	require.Equal(t, TierExceptional, TierFor(90))
	require.Equal(t, TierTrusted, TierFor(75))
	require.Equal(t, TierNeutral, TierFor(50))
	require.Equal(t, TierCautionary, TierFor(25))
	require.Equal(t, TierUntrusted, TierFor(24))
	require.Equal(t, TierUntrusted, TierFor(0))
}

func TestReputation_DecayTowardPullsTowardTarget(t *testing.T) {
	require.Equal(t, 60, decayToward(70, 50, 10))
	require.Equal(t, 50, decayToward(55, 50, 10))
	require.Equal(t, 40, decayToward(30, 50, 10))
	require.Equal(t, 50, decayToward(45, 50, 10))
	require.Equal(t, 50, decayToward(50, 50, 10))
}
