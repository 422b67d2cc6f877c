package entity

import (
	"time"
)

// AuthMethod is a credential kind usable to authenticate a user.
type AuthMethod string

const (
	AuthMethodEmail  AuthMethod = "email"
	AuthMethodGoogle AuthMethod = "google"
	AuthMethodApple  AuthMethod = "apple"
)

// User is the aggregate root for identity. AuthMethods is the authoritative
// capability set; the presence of PasswordHash/GoogleID/AppleID is derived
// state and must never be consulted instead of it.
//
// Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string

	PasswordHash string // empty when no password was ever set
	GoogleID     string
	AppleID      string

	AuthMethods     []AuthMethod
	IsEmailVerified bool

	// Transient OTP state, cleared after successful verification or reissue.
	EmailOTP        string
	EmailOTPExpires *time.Time
	OTPAttempts     int

	// Transient recovery state.
	PasswordResetToken   string
	PasswordResetExpires *time.Time

	// Lockout state. IsLocked implies LockUntil in the future; both are
	// cleared together on successful login or lock expiry.
	LoginAttempts int
	IsLocked      bool
	LockUntil     *time.Time

	LastLogin *time.Time
	IsPremium bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasMethod reports whether m is in the user's capability set.
func (u *User) HasMethod(m AuthMethod) bool {
	for _, am := range u.AuthMethods {
		if am == m {
			return true
		}
	}
	return false
}

// LockedAt reports whether the account is locked out at the given instant.
func (u *User) LockedAt(now time.Time) bool {
	return u.IsLocked && u.LockUntil != nil && now.Before(*u.LockUntil)
}

// HasPendingOTP reports whether an OTP cycle is in progress.
func (u *User) HasPendingOTP() bool {
	return u.EmailOTP != "" && u.EmailOTPExpires != nil
}
