// File: doc.go

// Package vouch implements the Vouch Protocol identity core: a Signer
// that mints short-lived, signed vouch-tokens binding an agent identifier
// to an intent payload, and a Verifier that authenticates those tokens
// against forgery, replay, expiry, delegation-abuse, and revoked keys.
//
// The core consists of a Signer, a Verifier, an identity resolver
// (did:web), a replay guard, a revocation registry, and a reputation
// engine. Their stores are pluggable interfaces (KeyCache, ReplayGuard,
// RevocationStore, ReputationStore), each with an in-memory
// implementation. KeyCache, ReplayGuard and ReputationStore also have
// Redis-backed implementations; RevocationStore has a SQL-backed store
// and an HTTP-pull store for reading a remote
// .well-known/did-revocations.json document.
//
// A minimal end-to-end flow:
//
//	keyPair, _ := vouch.GenerateIdentity("id:web:agent.example.com")
//	signer, _ := vouch.NewSigner(keyPair, keyPair.Identifier, 300)
//	token, _ := signer.Sign(map[string]any{"action": "read_email"}, vouch.SignOptions{})
//
//	verifier := vouch.NewVerifier(vouch.DefaultConfig(), nil, nil, nil, nil)
//	verifier.AddTrustedRoot(keyPair.Identifier, keyPair.Public)
//	valid, passport, reason := verifier.CheckVouch(context.Background(), token)
package vouch
