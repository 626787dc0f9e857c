// File: resolver.go

package vouch

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// IdentityResolver maps a domain-anchored Identifier to its current public
// key. Implementations must be pure-read: the only state they may mutate
// is their own cache.
type IdentityResolver interface {
	Resolve(ctx context.Context, identifier Identifier) (ed25519.PublicKey, error)
}

// verificationMethod mirrors a single entry of a did.json document's
// verificationMethod array.
type verificationMethod struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Controller      string         `json:"controller"`
	PublicKeyJWK    map[string]any `json:"publicKeyJwk"`
}

type didDocument struct {
	ID                 string               `json:"id"`
	VerificationMethod []verificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	AssertionMethod    []string             `json:"assertionMethod"`
}

// DIDWebToURL converts a did:web-shaped Identifier into the URL its
// document must be fetched from, including percent-decoding of the domain
// segment (e.g. "example.com%3A8080" -> "example.com:8080").
func DIDWebToURL(identifier Identifier) (string, error) {
	if identifier.Method() != "web" {
		return "", fmt.Errorf("%w: not a did:web identifier: %s", ErrUnresolvableIdentifier, identifier)
	}
	domain := identifier.Domain()
	if domain == "" {
		return "", fmt.Errorf("%w: empty domain in identifier: %s", ErrUnresolvableIdentifier, identifier)
	}
	segments := identifier.PathSegments()
	if len(segments) > 0 {
		return fmt.Sprintf("https://%s/%s/did.json", domain, strings.Join(segments, "/")), nil
	}
	return fmt.Sprintf("https://%s/.well-known/did.json", domain), nil
}

// WebResolver implements IdentityResolver for the "web" method over HTTP.
type WebResolver struct {
	client  *http.Client
	timeout time.Duration
}

// NewWebResolver builds a resolver with the given HTTP timeout. Its client
// uses http.DefaultTransport with TLS verification enabled.
func NewWebResolver(timeout time.Duration) *WebResolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebResolver{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Resolve fetches and parses the DID document, selecting the first
// verification method whose key type is OKP/Ed25519.
func (r *WebResolver) Resolve(ctx context.Context, identifier Identifier) (ed25519.PublicKey, error) {
	if identifier.Method() != "web" {
		return nil, fmt.Errorf("%w: unsupported method %q", ErrUnresolvableIdentifier, identifier.Method())
	}

	docURL, err := DIDWebToURL(identifier)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnresolvableIdentifier, err)
	}
	req.Header.Set("Accept", "application/did+json, application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		logx.Errorf("vouch: resolve %s: %v", identifier, err)
		return nil, fmt.Errorf("%w: http error: %v", ErrUnresolvableIdentifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s not found", ErrUnresolvableIdentifier, docURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrUnresolvableIdentifier, resp.StatusCode, docURL)
	}

	var doc didDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: malformed did document: %v", ErrUnresolvableIdentifier, err)
	}

	for _, vm := range doc.VerificationMethod {
		kty, _ := vm.PublicKeyJWK["kty"].(string)
		crv, _ := vm.PublicKeyJWK["crv"].(string)
		if kty != "OKP" || crv != "Ed25519" {
			continue
		}
		x, _ := vm.PublicKeyJWK["x"].(string)
		if x == "" {
			continue
		}
		raw, err := base64.RawURLEncoding.DecodeString(x)
		if err != nil {
			continue
		}
		if len(raw) != ed25519.PublicKeySize {
			continue
		}
		return ed25519.PublicKey(raw), nil
	}

	return nil, fmt.Errorf("%w: no matching Ed25519 verification method in %s", ErrUnresolvableIdentifier, docURL)
}
