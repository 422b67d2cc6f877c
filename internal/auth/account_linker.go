package auth

import (
	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
)

// RegisterAction is the account linker's verdict for an email/password
// registration attempt.
type RegisterAction int

const (
	// RegisterCreate creates a fresh account with auth_methods=[email],
	// unverified, and starts the OTP cycle.
	RegisterCreate RegisterAction = iota
	// RegisterStagePassword attaches a password to an existing social-only
	// account. The email method is only added once the OTP is verified.
	RegisterStagePassword
	// RegisterConflict rejects: the email method already belongs to this
	// address.
	RegisterConflict
)

// OAuthAction is the linker's verdict for a verified provider identity.
type OAuthAction int

const (
	// OAuthSignIn is the fast path: the provider id is already attached.
	OAuthSignIn OAuthAction = iota
	// OAuthLink attaches the provider to the account matched by email.
	OAuthLink
	// OAuthCreate creates a new account with the provider as its only method.
	OAuthCreate
)

// AccountLinker decides how an incoming credential assertion maps onto the
// existing account space. Email is the unification key across providers;
// the provider id is the fast-path key once linked. The linker is pure;
// lookups and mutations stay with the orchestrator.
type AccountLinker struct{}

// DecideRegister picks the action for a registration against the account
// matched by email, if any. First match wins.
func (AccountLinker) DecideRegister(existing *entity.User) RegisterAction {
	switch {
	case existing == nil:
		return RegisterCreate
	case existing.HasMethod(entity.AuthMethodEmail):
		return RegisterConflict
	default:
		return RegisterStagePassword
	}
}

// DecideOAuth picks the action given the account matched by provider id and
// the account matched by email. byProvider wins over byEmail.
func (AccountLinker) DecideOAuth(byProvider, byEmail *entity.User) OAuthAction {
	switch {
	case byProvider != nil:
		return OAuthSignIn
	case byEmail != nil:
		return OAuthLink
	default:
		return OAuthCreate
	}
}
