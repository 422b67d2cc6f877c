// Package oauth verifies ID tokens from the identity providers the mobile
// clients sign in with. Verification is delegated to the provider: Google
// tokens go through the tokeninfo endpoint, Apple tokens are checked against
// Apple's published JWKS.
package oauth

import (
	"context"
	"errors"
)

// Provider names as persisted in users.auth_methods.
const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"
)

var (
	ErrTokenInvalid     = errors.New("oauth: id token invalid")
	ErrEmailNotVerified = errors.New("oauth: provider email not verified")
)

// Identity is the normalized result of a verified provider ID token.
type Identity struct {
	Provider string
	Subject  string // provider-scoped stable user id
	Email    string
	Name     string
	Picture  string
}

// Verifier validates a raw ID token and returns the asserted identity.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}
