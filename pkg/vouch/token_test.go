// File: token_test.go

package vouch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON_SortsObjectKeysRecursively(t *testing.T) {
	raw, err := canonicalJSON(map[string]any{
		"z": 1,
		"a": map[string]any{"y": 2, "b": 3},
		"m": []any{map[string]any{"d": 1, "c": 2}},
	})
	require.NoError(t, err)
	require.Equal(t, `{"a":{"b":3,"y":2},"m":[{"c":2,"d":1}],"z":1}`, string(raw))
}

func TestCanonicalJSON_IsDeterministicAcrossCalls(t *testing.T) {
	payload := map[string]any{"b": 1, "a": 2, "c": []any{3, 2, 1}}
	first, err := canonicalJSON(payload)
	require.NoError(t, err)
	second, err := canonicalJSON(payload)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSplitToken_RejectsWrongPartCount(t *testing.T) {
	_, _, _, err := splitToken("only.two")
	require.ErrorIs(t, err, ErrMalformedToken)

	_, _, _, err = splitToken("a.b.c.d")
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestB64url_RoundTrips(t *testing.T) {
	raw := []byte(`{"alg":"EdDSA"}`)
	encoded := b64url(raw)
	require.NotContains(t, encoded, "=")
	decoded, err := b64urlDecode(encoded)
	require.NoError(t, err)
	require.Equal(t, raw, decoded)
}

func TestDecodeClaims_RoundTripsWireClaims(t *testing.T) {
	claims := wireClaims{
		Jti: "abc", Iss: "id:web:a.example.com", Sub: "id:web:a.example.com",
		Iat: 1, Nbf: 1, Exp: 2,
		Vouch: VouchEnvelope{Version: "1.0", Payload: map[string]any{"action": "read"}},
	}
	raw, err := canonicalJSON(claims)
	require.NoError(t, err)

	var roundTripped map[string]any
	require.NoError(t, json.Unmarshal(raw, &roundTripped))
	require.Equal(t, "abc", roundTripped["jti"])

	decoded, err := decodeClaims(b64url(raw))
	require.NoError(t, err)
	require.Equal(t, claims.Jti, decoded.Jti)
	require.Equal(t, "read", decoded.Vouch.Payload["action"])
}

func TestHashIntent_StableForEquivalentPayloads(t *testing.T) {
	a, err := hashIntent(map[string]any{"x": 1, "y": 2})
	require.NoError(t, err)
	b, err := hashIntent(map[string]any{"y": 2, "x": 1})
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}
