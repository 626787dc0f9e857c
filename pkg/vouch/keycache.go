// File: keycache.go

package vouch

import (
	"context"
	"crypto/ed25519"
)

// KeyCache provides sub-millisecond lookups of public keys by Identifier,
// bounded in size. All implementations are safe for concurrent use.
type KeyCache interface {
	Get(ctx context.Context, identifier Identifier) (ed25519.PublicKey, bool)
	Set(ctx context.Context, identifier Identifier, key ed25519.PublicKey, ttlSeconds int64)
	Delete(ctx context.Context, identifier Identifier) bool
	Clear(ctx context.Context)
}
