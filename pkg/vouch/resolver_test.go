// File: resolver_test.go

package vouch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDIDWebToURL_PlainDomain(t *testing.T) {
	url, err := DIDWebToURL("id:web:example.com")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/.well-known/did.json", url)
}

func TestDIDWebToURL_PercentEncodedDomainWithPort(t *testing.T) {
	url, err := DIDWebToURL("id:web:example.com%3A8080")
	require.NoError(t, err)
	require.Equal(t, "https://example.com:8080/.well-known/did.json", url)
}

func TestDIDWebToURL_WithPathSegments(t *testing.T) {
	url, err := DIDWebToURL("id:web:example.com:agents:alice")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/agents/alice/did.json", url)
}

func TestDIDWebToURL_RejectsNonWebMethod(t *testing.T) {
	_, err := DIDWebToURL("id:key:z6Mk...")
	require.ErrorIs(t, err, ErrUnresolvableIdentifier)
}

func TestIdentifier_DomainAndPathSegments(t *testing.T) {
	id := Identifier("id:web:example.com:agents:alice")
	require.Equal(t, "web", id.Method())
	require.Equal(t, "example.com", id.Domain())
	require.Equal(t, []string{"agents", "alice"}, id.PathSegments())
}
