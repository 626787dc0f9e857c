// File: verifier.go

package vouch

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zeromicro/go-zero/core/logx"
)

// Verifier decides whether a token is authentic, fresh, non-revoked,
// non-replayed, and, if applicable, properly delegated.
type Verifier struct {
	trustedRoots atomic.Value // map[Identifier]ed25519.PublicKey, copy-on-write
	rootsMu      sync.Mutex   // serializes writers only; readers use the atomic snapshot

	cache      KeyCache
	resolver   IdentityResolver
	replay     ReplayGuard
	revocation *RevocationRegistry

	clockSkewSeconds   int64
	maxTokenExpiry     int64
	replayGraceSeconds int64
	maxDelegationDepth int
	cacheTTLSeconds    int64

	metrics *Metrics
}

// NewVerifier builds a Verifier from its required stores and configuration.
// Any of cache/resolver/replay/revocation may be nil to disable that stage
// (e.g. a verifier with no resolver only trusts pre-registered roots).
func NewVerifier(cfg Config, cache KeyCache, resolver IdentityResolver, replay ReplayGuard, revocation *RevocationRegistry) *Verifier {
	v := &Verifier{
		cache:              cache,
		resolver:           resolver,
		replay:             replay,
		revocation:         revocation,
		clockSkewSeconds:   cfg.ClockSkewSeconds,
		maxTokenExpiry:     cfg.MaxTokenExpiry,
		replayGraceSeconds: cfg.ReplayGraceSeconds,
		maxDelegationDepth: cfg.MaxDelegationDepth,
		cacheTTLSeconds:    cfg.CacheTTLSeconds,
	}
	if v.maxDelegationDepth <= 0 || v.maxDelegationDepth > maxDelegationDepth {
		v.maxDelegationDepth = maxDelegationDepth
	}
	v.trustedRoots.Store(map[Identifier]ed25519.PublicKey{})
	return v
}

// WithMetrics attaches a Metrics sink for the verifier's outcome counters.
func (v *Verifier) WithMetrics(m *Metrics) *Verifier {
	v.metrics = m
	return v
}

// AddTrustedRoot installs identifier -> publicKey into the copy-on-write
// trusted-roots table. Readers never block on a writer: they load whatever
// snapshot was current at the start of their call.
func (v *Verifier) AddTrustedRoot(identifier Identifier, publicKey ed25519.PublicKey) {
	v.rootsMu.Lock()
	defer v.rootsMu.Unlock()

	old := v.trustedRoots.Load().(map[Identifier]ed25519.PublicKey)
	next := make(map[Identifier]ed25519.PublicKey, len(old)+1)
	for k, val := range old {
		next[k] = val
	}
	next[identifier] = publicKey
	v.trustedRoots.Store(next)
}

// RemoveTrustedRoot removes identifier from the trusted-roots table.
func (v *Verifier) RemoveTrustedRoot(identifier Identifier) {
	v.rootsMu.Lock()
	defer v.rootsMu.Unlock()

	old := v.trustedRoots.Load().(map[Identifier]ed25519.PublicKey)
	if _, ok := old[identifier]; !ok {
		return
	}
	next := make(map[Identifier]ed25519.PublicKey, len(old))
	for k, val := range old {
		if k == identifier {
			continue
		}
		next[k] = val
	}
	v.trustedRoots.Store(next)
}

func (v *Verifier) trustedRoot(identifier Identifier) (ed25519.PublicKey, bool) {
	roots := v.trustedRoots.Load().(map[Identifier]ed25519.PublicKey)
	key, ok := roots[identifier]
	return key, ok
}

// Verify checks a token's signature and time claims against an explicitly
// supplied public key, performing no key resolution and no replay check —
// useful when the caller already holds the issuer's key out of band. The
// revocation registry, when configured, is still consulted for the issuer
// and every identifier in the delegation chain; a remote revocation store
// may make a network request.
func (v *Verifier) Verify(token string, publicKey ed25519.PublicKey) (bool, *Passport, *Reason) {
	claims, _, _, reason := v.parseAndCheckSignature(token, publicKey)
	if reason != nil {
		return false, nil, reason
	}
	if v.revocation != nil {
		if v.metrics != nil {
			v.metrics.ObserveRevocationCheck()
		}
		if reason := v.checkRevocationChain(context.Background(), claims); reason != nil {
			return false, nil, reason
		}
	}
	passport := claimsToPassport(claims)
	return true, &passport, nil
}

// CheckVouch performs full verification: parse, resolve key, verify
// signature, validate time, validate delegation chain, check revocation,
// check replay. Each stage short-circuits the rest on failure.
func (v *Verifier) CheckVouch(ctx context.Context, token string) (bool, *Passport, *Reason) {
	headerB64, claimsB64, sigB64, err := splitToken(token)
	if err != nil {
		v.count("malformed")
		return false, nil, newReason(ErrMalformedToken, err.Error())
	}

	claims, err := decodeClaims(claimsB64)
	if err != nil {
		v.count("malformed")
		return false, nil, newReason(ErrMalformedToken, err.Error())
	}

	issuer := Identifier(claims.Iss)
	if issuer == "" {
		v.count("malformed")
		return false, nil, newReason(ErrMalformedToken, "missing issuer")
	}

	publicKey, reason := v.obtainKey(ctx, issuer)
	if reason != nil {
		v.count("unresolvable")
		return false, nil, reason
	}

	sigBytes, err := b64urlDecode(sigB64)
	if err != nil {
		v.count("malformed")
		return false, nil, newReason(ErrMalformedToken, "signature base64: "+err.Error())
	}
	if err := jwt.SigningMethodEdDSA.Verify(signingInput(headerB64, claimsB64), sigBytes, publicKey); err != nil {
		v.count("invalid_signature")
		return false, nil, newReason(ErrInvalidSignature, err.Error())
	}

	if reason := v.validateTime(claims); reason != nil {
		v.count(string(reason.Err.Error()))
		return false, nil, reason
	}

	if reason := v.validateDelegationChain(ctx, claims); reason != nil {
		v.count("chain_invalid")
		return false, nil, reason
	}

	if v.revocation != nil {
		if v.metrics != nil {
			v.metrics.ObserveRevocationCheck()
		}
		if reason := v.checkRevocationChain(ctx, claims); reason != nil {
			v.count("revoked")
			return false, nil, reason
		}
	}

	if v.replay != nil {
		used, err := v.replay.IsUsed(ctx, claims.Jti)
		if err != nil {
			v.count("store_unavailable")
			return false, nil, newReason(ErrStoreUnavailable, err.Error())
		}
		if used {
			v.count("replay")
			return false, nil, newReason(ErrReplay, claims.Jti)
		}
		grace := v.replayGraceSeconds
		if grace <= 0 {
			grace = 60
		}
		marked, err := v.replay.MarkUsed(ctx, claims.Jti, claims.Exp+grace)
		if err != nil {
			v.count("store_unavailable")
			return false, nil, newReason(ErrStoreUnavailable, err.Error())
		}
		if !marked {
			v.count("replay")
			return false, nil, newReason(ErrReplay, claims.Jti)
		}
	}

	v.count("valid")
	passport := claimsToPassport(claims)
	return true, &passport, nil
}

// obtainKey resolves issuer's public key: trusted-roots table -> key cache
// -> identity resolver, populating the cache on resolver success so a
// repeated verification from the same issuer skips the network round trip.
func (v *Verifier) obtainKey(ctx context.Context, issuer Identifier) (ed25519.PublicKey, *Reason) {
	if key, ok := v.trustedRoot(issuer); ok {
		return key, nil
	}

	if v.cache != nil {
		if key, ok := v.cache.Get(ctx, issuer); ok {
			return key, nil
		}
	}

	if v.resolver == nil {
		return nil, newReason(ErrUntrustedIssuer, string(issuer))
	}

	key, err := v.resolver.Resolve(ctx, issuer)
	if err != nil {
		logx.Infof("vouch: resolve %s failed: %v", issuer, err)
		return nil, newReason(ErrUnresolvableIdentifier, err.Error())
	}

	if v.cache != nil {
		v.cache.Set(ctx, issuer, key, v.cacheTTLSeconds)
	}
	return key, nil
}

// parseAndCheckSignature is the shared core of Verify (no key resolution,
// no stores): split, decode, verify signature, validate time.
func (v *Verifier) parseAndCheckSignature(token string, publicKey ed25519.PublicKey) (wireClaims, string, string, *Reason) {
	headerB64, claimsB64, sigB64, err := splitToken(token)
	if err != nil {
		return wireClaims{}, "", "", newReason(ErrMalformedToken, err.Error())
	}
	claims, err := decodeClaims(claimsB64)
	if err != nil {
		return wireClaims{}, "", "", newReason(ErrMalformedToken, err.Error())
	}
	sigBytes, err := b64urlDecode(sigB64)
	if err != nil {
		return wireClaims{}, "", "", newReason(ErrMalformedToken, "signature base64: "+err.Error())
	}
	if err := jwt.SigningMethodEdDSA.Verify(signingInput(headerB64, claimsB64), sigBytes, publicKey); err != nil {
		return wireClaims{}, "", "", newReason(ErrInvalidSignature, err.Error())
	}
	if reason := v.validateTime(claims); reason != nil {
		return wireClaims{}, "", "", reason
	}
	return claims, headerB64, claimsB64, nil
}

// validateTime enforces iat<=nbf<=exp, the maximum lifetime cap, and
// symmetric clock skew in both directions — a token can be rejected for
// arriving too early just as surely as for arriving too late.
func (v *Verifier) validateTime(claims wireClaims) *Reason {
	now := unixNow()
	skew := v.clockSkewSeconds
	if skew < 0 {
		skew = 0
	}

	maxExpiry := v.maxTokenExpiry
	if maxExpiry <= 0 {
		maxExpiry = 3600
	}
	if claims.Iat > claims.Nbf || claims.Nbf > claims.Exp {
		return newReason(ErrMalformedToken, "claims violate iat <= nbf <= exp")
	}
	if claims.Exp-claims.Iat > maxExpiry {
		return newReason(ErrExpired, "token lifetime exceeds verifier maximum")
	}

	if now > claims.Exp+skew {
		return newReason(ErrExpired, "")
	}
	if now < claims.Nbf-skew {
		return newReason(ErrNotYetValid, "")
	}
	return nil
}

// validateDelegationChain checks link continuity (link[i].subject ==
// link[i+1].issuer), that the token's issuer equals the last link's
// subject, depth <= max, that each link's issuer key is obtainable, and
// that each link's embedded signature is a well-formed EdDSA signature.
// The embedded signatures are not verified against the issuers' keys.
func (v *Verifier) validateDelegationChain(ctx context.Context, claims wireClaims) *Reason {
	chain := claims.Vouch.DelegationChain
	if len(chain) == 0 {
		return nil
	}

	if len(chain) > v.maxDelegationDepth {
		return newReason(ErrChainTooDeep, fmt.Sprintf("depth %d exceeds maximum %d", len(chain), v.maxDelegationDepth))
	}

	for i := 0; i < len(chain)-1; i++ {
		if chain[i].Subject != chain[i+1].Issuer {
			return newReason(ErrChainInvalid, fmt.Sprintf("link %d subject does not match link %d issuer", i, i+1))
		}
	}

	last := chain[len(chain)-1]
	if string(last.Subject) != claims.Iss {
		return newReason(ErrChainInvalid, "token issuer does not match final delegation link's subject")
	}

	for i, link := range chain {
		key, reason := v.obtainKey(ctx, link.Issuer)
		if reason != nil {
			return newReason(ErrChainInvalid, fmt.Sprintf("link %d: %v", i, reason))
		}
		sigBytes, err := b64urlDecode(link.Signature)
		if err != nil {
			return newReason(ErrChainInvalid, fmt.Sprintf("link %d: malformed signature", i))
		}
		// The embedded signature is the parent token's own signature over
		// its header.payload. The parent's header and claims are not
		// carried in the link itself, so full byte-for-byte re-derivation
		// isn't possible here; what this check can assert is that the
		// recorded signature is a well-formed EdDSA signature and that the
		// claimed issuer key was itself resolvable.
		if len(sigBytes) != ed25519.SignatureSize {
			return newReason(ErrChainInvalid, fmt.Sprintf("link %d: malformed signature length", i))
		}
		_ = key // key presence (resolvability) is itself part of the check
	}

	return nil
}

// checkRevocationChain rejects if any identifier in the chain — including
// the final signer — is revoked with effective_from <= now.
func (v *Verifier) checkRevocationChain(ctx context.Context, claims wireClaims) *Reason {
	identifiers := []Identifier{Identifier(claims.Iss)}
	for _, link := range claims.Vouch.DelegationChain {
		identifiers = append(identifiers, link.Issuer, link.Subject)
	}

	seen := make(map[Identifier]bool)
	for _, id := range identifiers {
		if seen[id] {
			continue
		}
		seen[id] = true

		revoked, err := v.revocation.IsRevoked(ctx, id)
		if err != nil {
			return newReason(ErrStoreUnavailable, err.Error())
		}
		if revoked {
			return newReason(ErrRevoked, string(id))
		}
	}
	return nil
}

func claimsToPassport(claims wireClaims) Passport {
	return Passport{
		TokenID:         claims.Jti,
		Issuer:          Identifier(claims.Iss),
		Subject:         Identifier(claims.Sub),
		IssuedAt:        claims.Iat,
		NotBefore:       claims.Nbf,
		Expiry:          claims.Exp,
		Payload:         claims.Vouch.Payload,
		ReputationScore: claims.Vouch.ReputationScore,
		DelegationChain: claims.Vouch.DelegationChain,
	}
}

func (v *Verifier) count(result string) {
	if v.metrics != nil {
		v.metrics.ObserveVerify(result)
	}
}

// BatchResult is one token's verification outcome. VerifyBatch stores each
// result at its token's input index, so the result slice follows input
// order regardless of completion order.
type BatchResult struct {
	Valid    bool
	Passport *Passport
	Reason   *Reason
}

// VerifyBatch runs CheckVouch over tokens with bounded concurrency
// (default 50), preserving input order in the result slice.
func (v *Verifier) VerifyBatch(ctx context.Context, tokens []string, maxConcurrent int) []BatchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 50
	}

	results := make([]BatchResult, len(tokens))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = BatchResult{Reason: newReason(ErrStoreUnavailable, ctx.Err().Error())}
				return
			}

			valid, passport, reason := v.CheckVouch(ctx, token)
			results[i] = BatchResult{Valid: valid, Passport: passport, Reason: reason}
		}(i, token)
	}

	wg.Wait()
	return results
}
