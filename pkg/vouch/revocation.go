// File: revocation.go

package vouch

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"
)

// RevocationStore is a single backend for revocation tracking. HTTP-backed
// implementations are read-only and return ErrStoreUnavailable wrapped
// errors from Revoke/Reinstate.
type RevocationStore interface {
	Revoke(ctx context.Context, record RevocationRecord) error
	IsRevoked(ctx context.Context, identifier Identifier) (bool, error)
	Get(ctx context.Context, identifier Identifier) (*RevocationRecord, error)
	List(ctx context.Context) ([]RevocationRecord, error)
	Reinstate(ctx context.Context, identifier Identifier) (bool, error)
}

// RevocationRegistry composes a local, authoritative read-write store with
// an optional read-only remote store, reporting an identifier revoked if
// either backend says so and effective_from has passed.
type RevocationRegistry struct {
	local  RevocationStore
	remote RevocationStore // nil if remote checking is disabled
}

// NewRevocationRegistry builds a registry. remote may be nil to disable
// remote .well-known pull checks entirely.
func NewRevocationRegistry(local RevocationStore, remote RevocationStore) *RevocationRegistry {
	if local == nil {
		local = NewMemoryRevocationStore()
	}
	return &RevocationRegistry{local: local, remote: remote}
}

// Revoke records a revocation in the local (authoritative) store.
func (r *RevocationRegistry) Revoke(ctx context.Context, identifier Identifier, reason string, revokedBy Identifier, effectiveFrom int64) (RevocationRecord, error) {
	record := RevocationRecord{
		Identifier:    identifier,
		RevokedAt:     unixNow(),
		Reason:        reason,
		RevokedBy:     revokedBy,
		EffectiveFrom: effectiveFrom,
	}
	if err := r.local.Revoke(ctx, record); err != nil {
		return RevocationRecord{}, err
	}
	return record, nil
}

// IsRevoked checks the local store first, then the remote store if
// enabled. A remote failure fails open — it must not block verification
// over a flaky third-party .well-known endpoint — while a local-store
// failure still fails closed, since the local store is authoritative.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, identifier Identifier) (bool, error) {
	revoked, err := r.local.IsRevoked(ctx, identifier)
	if err != nil {
		return false, err
	}
	if revoked {
		return true, nil
	}
	if r.remote == nil {
		return false, nil
	}
	revoked, err = r.remote.IsRevoked(ctx, identifier)
	if err != nil {
		// remote failures are fail-open: the caller's overall Revoked
		// check is unaffected, but the error is still surfaced for logging.
		logx.Errorf("vouch: remote revocation check for %s failed: %v", identifier, err)
		return false, nil
	}
	return revoked, nil
}

// Get returns revocation details, local store taking precedence.
func (r *RevocationRegistry) Get(ctx context.Context, identifier Identifier) (*RevocationRecord, error) {
	record, err := r.local.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}
	if r.remote == nil {
		return nil, nil
	}
	return r.remote.Get(ctx, identifier)
}

// Reinstate removes a local revocation, restoring trust in the identifier.
func (r *RevocationRegistry) Reinstate(ctx context.Context, identifier Identifier) (bool, error) {
	return r.local.Reinstate(ctx, identifier)
}

// ListLocal lists all locally-tracked revocations.
func (r *RevocationRegistry) ListLocal(ctx context.Context) ([]RevocationRecord, error) {
	return r.local.List(ctx)
}

// wellKnownRevocationDoc mirrors the .well-known/did-revocations.json
// document a did:web domain publishes for remote revocation pull.
type wellKnownRevocationDoc struct {
	UpdatedAt    int64              `json:"updated_at"`
	Revocations  []RevocationRecord `json:"revocations"`
}

// ExportWellKnown renders the local store's contents in the shape an
// identifier's own domain would publish at
// .well-known/did-revocations.json, for HTTPRevocationStore on another
// party's registry to pull.
func (r *RevocationRegistry) ExportWellKnown(ctx context.Context) (wellKnownRevocationDoc, error) {
	records, err := r.local.List(ctx)
	if err != nil {
		return wellKnownRevocationDoc{}, err
	}
	return wellKnownRevocationDoc{UpdatedAt: unixNow(), Revocations: records}, nil
}

// isEffective reports whether a revocation record is in force at now,
// honoring a future-dated effective_from.
func isEffective(record RevocationRecord, now int64) bool {
	if record.EffectiveFrom == 0 {
		return true
	}
	return record.EffectiveFrom <= now
}
