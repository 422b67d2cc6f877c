package auth

import (
	"time"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
)

// LoginGuard holds the lockout policy. The counter itself lives in the
// credential store and is incremented atomically there; the guard only
// decides whether a login attempt may proceed at all.
type LoginGuard struct {
	MaxAttempts int
	LockFor     time.Duration
}

func NewLoginGuard(maxAttempts int, lockFor time.Duration) *LoginGuard {
	return &LoginGuard{MaxAttempts: maxAttempts, LockFor: lockFor}
}

// Gate rejects the attempt while the account is locked. It runs before any
// password comparison so a correct password cannot probe a locked account.
func (g *LoginGuard) Gate(u *entity.User, now time.Time) error {
	if u.LockedAt(now) {
		return ErrAccountLocked
	}
	return nil
}
