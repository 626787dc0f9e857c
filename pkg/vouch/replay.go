// File: replay.go

package vouch

import "context"

// ReplayGuard rejects the second presentation of any token-id within its
// validity window. IsUsed followed by MarkUsed must be logically atomic
// per id; implementations achieve this with a mutex (in-memory) or a
// single SET-NX-with-TTL (distributed).
type ReplayGuard interface {
	// IsUsed reports whether id has already been marked used and not yet
	// expired.
	IsUsed(ctx context.Context, id string) (bool, error)
	// MarkUsed atomically checks-and-marks id as used, returning true if
	// this call is the one that marked it (i.e. it was not already used).
	MarkUsed(ctx context.Context, id string, expiresAtUnix int64) (marked bool, err error)
	// CleanupExpired sweeps expired entries and returns the count removed.
	// Distributed implementations rely on backend auto-expiration and may
	// treat this as a no-op.
	CleanupExpired(ctx context.Context) (int, error)
}
