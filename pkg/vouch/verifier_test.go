// File: verifier_test.go

package vouch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	cfg := DefaultConfig()
	cache := NewMemoryKeyCache(cfg.CacheMaxSize, cfg.CacheTTL())
	replay := NewMemoryReplayGuard(cfg.ReplayMaxSize, time.Hour)
	t.Cleanup(replay.Close)
	revocation := NewRevocationRegistry(NewMemoryRevocationStore(), nil)
	return NewVerifier(cfg, cache, nil, replay, revocation)
}

func TestVerifier_SignThenVerifyRoundTrip(t *testing.T) {
	kp := mustIdentity(t, "id:web:a.example.com")
	signer, err := NewSigner(kp, kp.Identifier, 300)
	require.NoError(t, err)

	v := newTestVerifier(t)
	v.AddTrustedRoot(kp.Identifier, kp.Public)

	token, err := signer.Sign(map[string]any{"action": "read"}, SignOptions{})
	require.NoError(t, err)

	valid, passport, reason := v.CheckVouch(context.Background(), token)
	require.True(t, valid)
	require.Nil(t, reason)
	require.Equal(t, kp.Identifier, passport.Issuer)
	require.Equal(t, "read", passport.Payload["action"])
}

func TestVerifier_TamperedSignatureFails(t *testing.T) {
	kp := mustIdentity(t, "id:web:a.example.com")
	signer, err := NewSigner(kp, kp.Identifier, 300)
	require.NoError(t, err)

	v := newTestVerifier(t)
	v.AddTrustedRoot(kp.Identifier, kp.Public)

	token, err := signer.Sign(map[string]any{"x": 1}, SignOptions{})
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "zz"

	valid, _, reason := v.CheckVouch(context.Background(), tampered)
	require.False(t, valid)
	require.NotNil(t, reason)
}

func TestVerifier_ReplayRejectsSecondPresentation(t *testing.T) {
	kp := mustIdentity(t, "id:web:a.example.com")
	signer, err := NewSigner(kp, kp.Identifier, 300)
	require.NoError(t, err)

	v := newTestVerifier(t)
	v.AddTrustedRoot(kp.Identifier, kp.Public)

	token, err := signer.Sign(map[string]any{}, SignOptions{})
	require.NoError(t, err)

	valid, _, _ := v.CheckVouch(context.Background(), token)
	require.True(t, valid)

	valid, _, reason := v.CheckVouch(context.Background(), token)
	require.False(t, valid)
	require.ErrorIs(t, reason, ErrReplay)
}

func TestVerifier_ExpiredTokenFails(t *testing.T) {
	kp := mustIdentity(t, "id:web:a.example.com")
	signer, err := NewSigner(kp, kp.Identifier, 1)
	require.NoError(t, err)
	signer.nowFn = func() int64 { return unixNow() - 10 }

	v := newTestVerifier(t)
	v.AddTrustedRoot(kp.Identifier, kp.Public)
	v.clockSkewSeconds = 0

	token, err := signer.Sign(map[string]any{}, SignOptions{})
	require.NoError(t, err)

	valid, _, reason := v.CheckVouch(context.Background(), token)
	require.False(t, valid)
	require.ErrorIs(t, reason, ErrExpired)
}

func TestVerifier_RevokedIssuerFails(t *testing.T) {
	kp := mustIdentity(t, "id:web:a.example.com")
	signer, err := NewSigner(kp, kp.Identifier, 300)
	require.NoError(t, err)

	v := newTestVerifier(t)
	v.AddTrustedRoot(kp.Identifier, kp.Public)

	_, err = v.revocation.Revoke(context.Background(), kp.Identifier, "leak", "", 0)
	require.NoError(t, err)

	token, err := signer.Sign(map[string]any{}, SignOptions{})
	require.NoError(t, err)

	valid, _, reason := v.CheckVouch(context.Background(), token)
	require.False(t, valid)
	require.ErrorIs(t, reason, ErrRevoked)
}

func TestVerifier_DelegatedTokenVerifies(t *testing.T) {
	a := mustIdentity(t, "id:web:a.example.com")
	signerA, err := NewSigner(a, a.Identifier, 300)
	require.NoError(t, err)

	b := mustIdentity(t, "id:web:b.example.com")
	signerB, err := NewSigner(b, b.Identifier, 300)
	require.NoError(t, err)

	tokenA, err := signerA.Sign(map[string]any{}, SignOptions{})
	require.NoError(t, err)

	tokenB, err := signerB.Sign(map[string]any{}, SignOptions{ParentToken: tokenA})
	require.NoError(t, err)

	v := newTestVerifier(t)
	v.AddTrustedRoot(a.Identifier, a.Public)
	v.AddTrustedRoot(b.Identifier, b.Public)

	valid, passport, reason := v.CheckVouch(context.Background(), tokenB)
	require.True(t, valid, "%v", reason)
	require.Len(t, passport.DelegationChain, 1)
	require.Equal(t, a.Identifier, passport.DelegationChain[0].Issuer)
	require.Equal(t, b.Identifier, passport.DelegationChain[0].Subject)
}

func TestVerifier_TrustedRootRemoval(t *testing.T) {
	kp := mustIdentity(t, "id:web:a.example.com")
	v := newTestVerifier(t)
	v.AddTrustedRoot(kp.Identifier, kp.Public)

	_, ok := v.trustedRoot(kp.Identifier)
	require.True(t, ok)

	v.RemoveTrustedRoot(kp.Identifier)
	_, ok = v.trustedRoot(kp.Identifier)
	require.False(t, ok)
}

func TestVerifier_VerifyBatchPreservesOrder(t *testing.T) {
	v := newTestVerifier(t)
	tokens := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		kp := mustIdentity(t, Identifier("id:web:agent-"+string(rune('a'+i))+".example.com"))
		signer, err := NewSigner(kp, kp.Identifier, 300)
		require.NoError(t, err)
		v.AddTrustedRoot(kp.Identifier, kp.Public)
		token, err := signer.Sign(map[string]any{"i": i}, SignOptions{})
		require.NoError(t, err)
		tokens = append(tokens, token)
	}

	results := v.VerifyBatch(context.Background(), tokens, 2)
	require.Len(t, results, 5)
	for i, result := range results {
		require.Truef(t, result.Valid, "token %d should be valid: %v", i, result.Reason)
		require.Equal(t, float64(i), result.Passport.Payload["i"])
	}
}
