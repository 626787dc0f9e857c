// File: revocation_test.go

package vouch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRevocationRegistry_RevokeThenIsRevoked(t *testing.T) {
	ctx := context.Background()
	registry := NewRevocationRegistry(NewMemoryRevocationStore(), nil)
	id := Identifier("id:web:a.example.com")

	revoked, err := registry.IsRevoked(ctx, id)
	require.NoError(t, err)
	require.False(t, revoked)

	_, err = registry.Revoke(ctx, id, "key compromised", "", 0)
	require.NoError(t, err)

	revoked, err = registry.IsRevoked(ctx, id)
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestRevocationRegistry_FutureEffectiveFromIsNotYetRevoked(t *testing.T) {
	ctx := context.Background()
	registry := NewRevocationRegistry(NewMemoryRevocationStore(), nil)
	id := Identifier("id:web:a.example.com")

	_, err := registry.Revoke(ctx, id, "scheduled", "", unixNow()+3600)
	require.NoError(t, err)

	revoked, err := registry.IsRevoked(ctx, id)
	require.NoError(t, err)
	require.False(t, revoked, "a future effective_from must not be revoked yet")
}

func TestRevocationRegistry_Reinstate(t *testing.T) {
	ctx := context.Background()
	registry := NewRevocationRegistry(NewMemoryRevocationStore(), nil)
	id := Identifier("id:web:a.example.com")

	_, err := registry.Revoke(ctx, id, "leak", "", 0)
	require.NoError(t, err)

	ok, err := registry.Reinstate(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	revoked, err := registry.IsRevoked(ctx, id)
	require.NoError(t, err)
	require.False(t, revoked)

	ok, err = registry.Reinstate(ctx, id)
	require.NoError(t, err)
	require.False(t, ok, "reinstating an identifier with no record reports false")
}

func TestRevocationRegistry_ExportWellKnown(t *testing.T) {
	ctx := context.Background()
	registry := NewRevocationRegistry(NewMemoryRevocationStore(), nil)
	id := Identifier("id:web:a.example.com")

	_, err := registry.Revoke(ctx, id, "leak", "", 0)
	require.NoError(t, err)

	doc, err := registry.ExportWellKnown(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Revocations, 1)
	require.Equal(t, id, doc.Revocations[0].Identifier)
	require.Greater(t, doc.UpdatedAt, int64(0))
}

// stubRevocationStore lets the remote-failure fail-open path be exercised
// without a real HTTP fetch.
type stubRevocationStore struct {
	revoked map[Identifier]bool
	err     error
}

func (s *stubRevocationStore) Revoke(context.Context, RevocationRecord) error { return ErrStoreUnavailable }
func (s *stubRevocationStore) IsRevoked(_ context.Context, id Identifier) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[id], nil
}
func (s *stubRevocationStore) Get(context.Context, Identifier) (*RevocationRecord, error) {
	return nil, nil
}
func (s *stubRevocationStore) List(context.Context) ([]RevocationRecord, error) { return nil, nil }
func (s *stubRevocationStore) Reinstate(context.Context, Identifier) (bool, error) {
	return false, ErrStoreUnavailable
}

func TestRevocationRegistry_RemoteFailureFailsOpen(t *testing.T) {
	ctx := context.Background()
	remote := &stubRevocationStore{err: ErrStoreUnavailable}
	registry := NewRevocationRegistry(NewMemoryRevocationStore(), remote)

	revoked, err := registry.IsRevoked(ctx, "id:web:a.example.com")
	require.NoError(t, err)
	require.False(t, revoked, "a remote lookup failure must not block verification")
}

func TestRevocationRegistry_RemoteRevocationIsHonored(t *testing.T) {
	ctx := context.Background()
	id := Identifier("id:web:a.example.com")
	remote := &stubRevocationStore{revoked: map[Identifier]bool{id: true}}
	registry := NewRevocationRegistry(NewMemoryRevocationStore(), remote)

	revoked, err := registry.IsRevoked(ctx, id)
	require.NoError(t, err)
	require.True(t, revoked)
}
