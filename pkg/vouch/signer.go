// File: signer.go

package vouch

import (
	"crypto/ed25519"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer issues vouch-tokens for a single stable Identifier, using an
// Ed25519 private key that never leaves this struct.
type Signer struct {
	identifier    Identifier
	private       ed25519.PrivateKey
	public        ed25519.PublicKey
	defaultExpiry int64
	maxChainDepth int
	nowFn         func() int64
	metrics       *Metrics
}

// WithMetrics attaches a Metrics sink; Sign calls increment its signed-token
// counter.
func (s *Signer) WithMetrics(m *Metrics) *Signer {
	s.metrics = m
	return s
}

// NewSigner constructs a Signer bound to identifier using keyPair. It fails
// with ErrInvalidKey if the private half is not a valid Ed25519 key.
func NewSigner(keyPair KeyPair, identifier Identifier, defaultExpirySeconds int64) (*Signer, error) {
	if len(keyPair.Private) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be ed25519 (got %d bytes)", ErrInvalidKey, len(keyPair.Private))
	}
	if len(keyPair.Public) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key must be ed25519 (got %d bytes)", ErrInvalidKey, len(keyPair.Public))
	}
	if defaultExpirySeconds <= 0 {
		defaultExpirySeconds = 300
	}
	return &Signer{
		identifier:    identifier,
		private:       keyPair.Private,
		public:        keyPair.Public,
		defaultExpiry: defaultExpirySeconds,
		maxChainDepth: maxDelegationDepth,
		nowFn:         unixNow,
	}, nil
}

// NewSignerWithConfig is NewSigner with the chain-depth ceiling taken from
// cfg.MaxDelegationDepth instead of the package default.
func NewSignerWithConfig(keyPair KeyPair, identifier Identifier, cfg Config) (*Signer, error) {
	s, err := NewSigner(keyPair, identifier, cfg.DefaultTokenExpiry)
	if err != nil {
		return nil, err
	}
	if cfg.MaxDelegationDepth > 0 && cfg.MaxDelegationDepth < maxDelegationDepth {
		s.maxChainDepth = cfg.MaxDelegationDepth
	}
	return s, nil
}

// SignOptions configures an individual Sign call.
type SignOptions struct {
	ExpirySeconds   int64
	ReputationScore *int
	ParentToken     string
}

// Sign builds claims from payload, optionally extends a delegation chain
// from a parent token, canonically serializes, and signs with EdDSA,
// returning the compact "header.claims.signature" token.
func (s *Signer) Sign(payload map[string]any, opts SignOptions) (string, error) {
	now := s.nowFn()
	expiry := opts.ExpirySeconds
	if expiry <= 0 {
		expiry = s.defaultExpiry
	}

	jti, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("vouch: generate jti: %w", err)
	}

	envelope := VouchEnvelope{
		Version: "1.0",
		Payload: payload,
	}
	if opts.ReputationScore != nil {
		score := clampScore(*opts.ReputationScore)
		envelope.ReputationScore = &score
	}

	if opts.ParentToken != "" {
		chain, err := s.extendChain(opts.ParentToken, payload, now)
		if err != nil {
			return "", err
		}
		envelope.DelegationChain = chain
	}

	claims := wireClaims{
		Jti:   jti.String(),
		Iss:   string(s.identifier),
		Sub:   string(s.identifier),
		Iat:   now,
		Nbf:   now,
		Exp:   now + expiry,
		Vouch: envelope,
	}

	header := tokenHeader{Alg: "EdDSA", Kid: string(s.identifier), Typ: "vouch+jwt"}

	headerJSON, err := canonicalJSON(header)
	if err != nil {
		return "", fmt.Errorf("vouch: marshal header: %w", err)
	}
	claimsJSON, err := canonicalJSON(claims)
	if err != nil {
		return "", fmt.Errorf("vouch: marshal claims: %w", err)
	}

	headerB64 := b64url(headerJSON)
	claimsB64 := b64url(claimsJSON)

	sig, err := jwt.SigningMethodEdDSA.Sign(signingInput(headerB64, claimsB64), s.private)
	if err != nil {
		return "", fmt.Errorf("vouch: sign: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ObserveSign()
	}
	return headerB64 + "." + claimsB64 + "." + b64url(sig), nil
}

// extendChain parses parentToken's claims, lifts its delegation chain, and
// appends a new link from parent.subject to this signer.
func (s *Signer) extendChain(parentToken string, payload map[string]any, now int64) ([]DelegationLink, error) {
	_, claimsB64, sigB64, err := splitToken(parentToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParent, err)
	}
	parentClaims, err := decodeClaims(claimsB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParent, err)
	}

	chain := append([]DelegationLink{}, parentClaims.Vouch.DelegationChain...)
	if len(chain) >= s.maxChainDepth {
		return nil, fmt.Errorf("%w: chain already at depth %d", ErrChainTooDeep, len(chain))
	}

	intentHash, err := hashIntent(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParent, err)
	}

	chain = append(chain, DelegationLink{
		Issuer:    Identifier(parentClaims.Sub),
		Subject:   s.identifier,
		Intent:    intentHash,
		IssuedAt:  now,
		Signature: sigB64,
	})

	if len(chain) > s.maxChainDepth {
		return nil, fmt.Errorf("%w: depth %d exceeds maximum %d", ErrChainTooDeep, len(chain), s.maxChainDepth)
	}
	return chain, nil
}

// maxDelegationDepth is the hard ceiling on a delegation chain's length.
// Verifier and Signer configurations may tighten it further via
// Config.MaxDelegationDepth, but never loosen past this ceiling.
const maxDelegationDepth = 5

// PublicKey returns the public half of this signer's key pair only.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.public
}

// Identifier returns the stable identifier this signer signs as.
func (s *Signer) Identifier() Identifier {
	return s.identifier
}
