// File: signer_test.go

package vouch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustIdentity(t *testing.T, identifier Identifier) KeyPair {
	t.Helper()
	kp, err := GenerateIdentity(identifier)
	require.NoError(t, err)
	return kp
}

func TestSigner_SignProducesThreePartCompactToken(t *testing.T) {
	kp := mustIdentity(t, "id:web:agent-a.example.com")
	signer, err := NewSigner(kp, kp.Identifier, 300)
	require.NoError(t, err)

	token, err := signer.Sign(map[string]any{"action": "read"}, SignOptions{})
	require.NoError(t, err)

	headerB64, claimsB64, sigB64, err := splitToken(token)
	require.NoError(t, err)
	require.NotEmpty(t, headerB64)
	require.NotEmpty(t, claimsB64)
	require.NotEmpty(t, sigB64)
}

func TestSigner_RejectsNonEd25519Key(t *testing.T) {
	_, err := NewSigner(KeyPair{Private: []byte("too-short"), Public: []byte("also-short")}, "id:web:x.com", 300)
	require.ErrorIs(t, err, ErrInvalidKey)
}

func TestSigner_ClampsReputationScore(t *testing.T) {
	kp := mustIdentity(t, "id:web:agent-a.example.com")
	signer, err := NewSigner(kp, kp.Identifier, 300)
	require.NoError(t, err)

	over := 150
	token, err := signer.Sign(map[string]any{}, SignOptions{ReputationScore: &over})
	require.NoError(t, err)

	_, claimsB64, _, err := splitToken(token)
	require.NoError(t, err)
	claims, err := decodeClaims(claimsB64)
	require.NoError(t, err)
	require.NotNil(t, claims.Vouch.ReputationScore)
	require.Equal(t, 100, *claims.Vouch.ReputationScore)
}

func TestSigner_DelegationChainGrowsAndCapsDepth(t *testing.T) {
	a := mustIdentity(t, "id:web:a.example.com")
	signerA, err := NewSigner(a, a.Identifier, 300)
	require.NoError(t, err)

	token, err := signerA.Sign(map[string]any{}, SignOptions{})
	require.NoError(t, err)

	current := a.Identifier
	// Build maxDelegationDepth successful links (chain of 5), then assert
	// the next (6th) delegation fails with ErrChainTooDeep.
	for i := 0; i < maxDelegationDepth; i++ {
		next := mustIdentity(t, Identifier(current.String()+"-child"))
		nextSigner, err := NewSigner(next, next.Identifier, 300)
		require.NoError(t, err)

		delegated, err := nextSigner.Sign(map[string]any{}, SignOptions{ParentToken: token})
		require.NoError(t, err)
		token = delegated
		current = next.Identifier
	}

	overflowChild := mustIdentity(t, Identifier(current.String()+"-overflow"))
	overflowSigner, err := NewSigner(overflowChild, overflowChild.Identifier, 300)
	require.NoError(t, err)

	_, err = overflowSigner.Sign(map[string]any{}, SignOptions{ParentToken: token})
	require.ErrorIs(t, err, ErrChainTooDeep)
}
