package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for the auth flows. Handlers map these onto HTTP statuses;
// anything else bubbling out of the service is treated as internal.
var (
	ErrAccountExists      = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountLocked is surfaced with the same shape as invalid credentials
	// so a locked account is not distinguishable from a wrong password.
	ErrAccountLocked    = errors.New("account temporarily locked")
	ErrUseSocialLogin   = errors.New("this account uses social login")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrNoPassword       = errors.New("no password set for this account")
	ErrSamePassword     = errors.New("new password must be different from the current password")

	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	ErrOTPNotPending      = errors.New("no verification code pending")
	ErrOTPExpired         = errors.New("verification code has expired")
	ErrOTPTooManyAttempts = errors.New("too many failed attempts, request a new code")
	// ErrOTPInvalid is the generic response for an unknown email on verify,
	// indistinguishable from a wrong code.
	ErrOTPInvalid = errors.New("invalid email or code")

	// errOTPMismatch is internal; the service converts it into an
	// OTPMismatchError carrying the remaining attempt count.
	errOTPMismatch = errors.New("code mismatch")
)

// OTPMismatchError reports a wrong code together with how many attempts
// remain before the code becomes unusable.
type OTPMismatchError struct {
	Remaining int
}

func (e *OTPMismatchError) Error() string {
	return fmt.Sprintf("invalid code. %d attempts remaining", e.Remaining)
}
