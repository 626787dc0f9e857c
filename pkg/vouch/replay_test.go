// File: replay_test.go

package vouch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryReplayGuard_FirstMarkSucceedsSecondFails(t *testing.T) {
	guard := NewMemoryReplayGuard(10, time.Minute)
	defer guard.Close()
	ctx := context.Background()

	marked, err := guard.MarkUsed(ctx, "jti-1", unixNow()+60)
	require.NoError(t, err)
	require.True(t, marked)

	marked, err = guard.MarkUsed(ctx, "jti-1", unixNow()+60)
	require.NoError(t, err)
	require.False(t, marked)

	used, err := guard.IsUsed(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, used)
}

func TestMemoryReplayGuard_EvictsOldestOnOverflow(t *testing.T) {
	guard := NewMemoryReplayGuard(2, time.Minute)
	defer guard.Close()
	ctx := context.Background()

	_, err := guard.MarkUsed(ctx, "jti-1", unixNow()+60)
	require.NoError(t, err)
	_, err = guard.MarkUsed(ctx, "jti-2", unixNow()+60)
	require.NoError(t, err)
	_, err = guard.MarkUsed(ctx, "jti-3", unixNow()+60)
	require.NoError(t, err)

	_, evicted := guard.Stats()
	require.Equal(t, uint64(1), evicted)

	used, _ := guard.IsUsed(ctx, "jti-1")
	require.False(t, used, "jti-1 should have been evicted")
}

func TestMemoryReplayGuard_CleanupExpiredRemovesPastEntries(t *testing.T) {
	guard := NewMemoryReplayGuard(10, time.Hour)
	defer guard.Close()
	ctx := context.Background()

	_, err := guard.MarkUsed(ctx, "jti-expired", unixNow()-1)
	require.NoError(t, err)

	removed, err := guard.CleanupExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	used, err := guard.IsUsed(ctx, "jti-expired")
	require.NoError(t, err)
	require.False(t, used)
}

func TestMemoryReplayGuard_CloseIsIdempotent(t *testing.T) {
	guard := NewMemoryReplayGuard(10, time.Minute)
	guard.Close()
	require.NotPanics(t, guard.Close)
}
