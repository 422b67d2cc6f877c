package auth

import (
	"crypto/subtle"
	"time"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/pkg/helpers"
)

const otpDigits = 4

// OTPEngine issues and checks the numeric email verification codes.
// It is pure over the user snapshot: persistence of the issued code and of
// the attempt ratchet is the caller's job.
type OTPEngine struct {
	TTL         time.Duration
	MaxAttempts int
}

func NewOTPEngine(ttl time.Duration, maxAttempts int) *OTPEngine {
	return &OTPEngine{TTL: ttl, MaxAttempts: maxAttempts}
}

// Issue generates a fresh uniform random 4-digit code and its expiry.
// Storing it must reset the attempt counter to zero.
func (e *OTPEngine) Issue(now time.Time) (code string, expires time.Time, err error) {
	code, err = helpers.GenNumericCode(otpDigits)
	if err != nil {
		return "", time.Time{}, err
	}
	return code, now.Add(e.TTL), nil
}

// Check validates a submitted code against the user's pending OTP state.
// Order matters: no pending code, then expiry, then the attempt ceiling,
// then the code itself. A mismatch returns errOTPMismatch; the caller
// increments the persisted counter and reports the remaining attempts.
func (e *OTPEngine) Check(u *entity.User, submitted string, now time.Time) error {
	if !u.HasPendingOTP() {
		return ErrOTPNotPending
	}
	if now.After(*u.EmailOTPExpires) {
		return ErrOTPExpired
	}
	if u.OTPAttempts >= e.MaxAttempts {
		return ErrOTPTooManyAttempts
	}
	if subtle.ConstantTimeCompare([]byte(u.EmailOTP), []byte(submitted)) != 1 {
		return errOTPMismatch
	}
	return nil
}
