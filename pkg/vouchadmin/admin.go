// File: admin.go

// Package vouchadmin is an optional administrative surface around the
// vouch identity core: trusted-root and revocation mutation gated by a
// bcrypt-hashed bearer credential. It is not part of the core's contract
// and prescribes no transport of its own — callers wire it into whatever
// HTTP/gRPC shell they already run.
package vouchadmin

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vouch-protocol/vouch-sub000/pkg/vouch"
)

// ErrUnauthorized is returned when a presented credential does not match
// the configured bcrypt hash.
var ErrUnauthorized = errors.New("vouchadmin: unauthorized")

// Admin gates mutation of a Verifier's trusted-roots table and a
// RevocationRegistry behind a single shared bearer credential.
type Admin struct {
	verifier       *vouch.Verifier
	revocation     *vouch.RevocationRegistry
	credentialHash []byte
}

// New builds an Admin surface. credential is the plaintext bearer token an
// operator will present; it is hashed with bcrypt immediately and never
// retained in plaintext.
func New(verifier *vouch.Verifier, revocation *vouch.RevocationRegistry, credential string) (*Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("vouchadmin: hash credential: %w", err)
	}
	return &Admin{verifier: verifier, revocation: revocation, credentialHash: hash}, nil
}

func (a *Admin) authenticate(presented string) error {
	if err := bcrypt.CompareHashAndPassword(a.credentialHash, []byte(presented)); err != nil {
		return ErrUnauthorized
	}
	return nil
}

// AddTrustedRoot installs a trusted root after authenticating the caller.
func (a *Admin) AddTrustedRoot(credential string, identifier vouch.Identifier, publicKey ed25519.PublicKey) error {
	if err := a.authenticate(credential); err != nil {
		return err
	}
	a.verifier.AddTrustedRoot(identifier, publicKey)
	return nil
}

// RemoveTrustedRoot removes a trusted root after authenticating the caller.
func (a *Admin) RemoveTrustedRoot(credential string, identifier vouch.Identifier) error {
	if err := a.authenticate(credential); err != nil {
		return err
	}
	a.verifier.RemoveTrustedRoot(identifier)
	return nil
}

// Revoke records a revocation after authenticating the caller.
func (a *Admin) Revoke(ctx context.Context, credential string, identifier vouch.Identifier, reason string, revokedBy vouch.Identifier, effectiveFrom int64) (vouch.RevocationRecord, error) {
	if err := a.authenticate(credential); err != nil {
		return vouch.RevocationRecord{}, err
	}
	return a.revocation.Revoke(ctx, identifier, reason, revokedBy, effectiveFrom)
}

// Reinstate removes a revocation after authenticating the caller.
func (a *Admin) Reinstate(ctx context.Context, credential string, identifier vouch.Identifier) (bool, error) {
	if err := a.authenticate(credential); err != nil {
		return false, err
	}
	return a.revocation.Reinstate(ctx, identifier)
}
