// File: token.go

package vouch

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// timeNow is a package-level indirection over time.Now so tests elsewhere
// in the module can monkey-patch it if ever needed; production code always
// uses the real clock.
var timeNow = time.Now

// tokenHeader is the fixed protected header: algorithm is always EdDSA,
// type is always "vouch+jwt", kid is a hint only — the Verifier always
// validates against the resolved key, never trusts the header for it.
type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ"`
}

// wireClaims is the on-the-wire claims object. Field order on the wire is
// fixed by canonicalJSON, not by struct tag order.
type wireClaims struct {
	Exp  int64          `json:"exp"`
	Iat  int64          `json:"iat"`
	Iss  string         `json:"iss"`
	Jti  string         `json:"jti"`
	Nbf  int64          `json:"nbf"`
	Sub  string         `json:"sub"`
	Vouch VouchEnvelope `json:"vouch"`
}

// canonicalJSON re-marshals v with sorted object keys and no insignificant
// whitespace, so the exact same claims always produce the exact same
// bytes regardless of which Go struct produced them — required for the
// signature to verify against independent re-implementations of the
// signer. encoding/json already emits no whitespace for compact Marshal;
// sorting is achieved by round-tripping through a map[string]any, whose
// keys json.Marshal always emits in sorted order.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return marshalSorted(generic)
}

func marshalSorted(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			vb, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			b.Write(vb)
		}
		b.WriteByte('}')
		return []byte(b.String()), nil
	case []any:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			ib, err := marshalSorted(item)
			if err != nil {
				return nil, err
			}
			b.Write(ib)
		}
		b.WriteByte(']')
		return []byte(b.String()), nil
	default:
		return json.Marshal(val)
	}
}

func b64url(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func b64urlDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// signingInput builds the "header.payload" ASCII string that gets signed
// or re-verified; the signature covers exactly these bytes, nothing else.
func signingInput(headerB64, claimsB64 string) string {
	return headerB64 + "." + claimsB64
}

// splitToken splits a compact token into its three parts, failing
// ErrMalformedToken on structural errors.
func splitToken(token string) (headerB64, claimsB64, sigB64 string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: expected 3 parts, got %d", ErrMalformedToken, len(parts))
	}
	return parts[0], parts[1], parts[2], nil
}

func decodeHeader(headerB64 string) (tokenHeader, error) {
	raw, err := b64urlDecode(headerB64)
	if err != nil {
		return tokenHeader{}, fmt.Errorf("%w: header base64: %v", ErrMalformedToken, err)
	}
	var h tokenHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return tokenHeader{}, fmt.Errorf("%w: header json: %v", ErrMalformedToken, err)
	}
	return h, nil
}

func decodeClaims(claimsB64 string) (wireClaims, error) {
	raw, err := b64urlDecode(claimsB64)
	if err != nil {
		return wireClaims{}, fmt.Errorf("%w: claims base64: %v", ErrMalformedToken, err)
	}
	var c wireClaims
	if err := json.Unmarshal(raw, &c); err != nil {
		return wireClaims{}, fmt.Errorf("%w: claims json: %v", ErrMalformedToken, err)
	}
	return c, nil
}

// hashIntent returns the hex-sha256 of a canonically-serialized payload,
// used as the intent hash embedded in a DelegationLink so a delegate's
// authority can be checked against exactly what it was granted for,
// without the registry needing to retain the payload itself.
func hashIntent(payload map[string]any) (string, error) {
	raw, err := canonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// ed25519GenerateKey wraps crypto/ed25519's key generation for GenerateIdentity.
func ed25519GenerateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

// unixNow is the wall-clock source used throughout the core. A Signer reads
// it through its own nowFn, which tests replace on an individual instance;
// the Verifier and the stores call it directly.
func unixNow() int64 {
	return timeNow().Unix()
}
