package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
)

// ErrNotFound is returned by all repositories when no row matches.
var ErrNotFound = errors.New("not found")

// UserRepository persists the user aggregate. Counter mutations
// (login attempts, OTP attempts) and reset-token consumption are expressed
// as single atomic operations so concurrent requests never undercount.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByProvider(ctx context.Context, method entity.AuthMethod, providerID string) (*entity.User, error)

	UpdateProfile(ctx context.Context, id, name, avatarURL string) (*entity.User, error)
	SetPassword(ctx context.Context, id, hash string) error

	// SetEmailOTP stores a fresh code with its expiry and resets the attempt
	// counter, invalidating any previous code.
	SetEmailOTP(ctx context.Context, id, code string, expires time.Time) error
	// IncrementOTPAttempts bumps the attempt counter and returns the
	// post-increment value.
	IncrementOTPAttempts(ctx context.Context, id string) (int, error)
	// CompleteEmailVerification clears OTP state and marks the email
	// verified; when addEmailMethod is set, "email" joins auth_methods
	// (link completion after a password was staged).
	CompleteEmailVerification(ctx context.Context, id string, addEmailMethod bool) error

	// RecordLoginFailure increments login_attempts and, when the
	// post-increment count reaches maxAttempts, sets the lock state in the
	// same statement.
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) error
	// RecordLoginSuccess clears attempts and lock state and stamps last_login.
	RecordLoginSuccess(ctx context.Context, id string) error

	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	// ConsumeResetToken atomically matches an unexpired token, installs the
	// new password hash, adds the email auth method and clears the token.
	// ErrNotFound means invalid or expired.
	ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (*entity.User, error)

	// LinkProvider attaches a provider id to an existing account: sets the
	// id column, adds the method to auth_methods, marks the email verified
	// and stamps last_login. The avatar is only filled in when empty.
	LinkProvider(ctx context.Context, id string, method entity.AuthMethod, providerID, avatarURL string) (*entity.User, error)

	SetPremium(ctx context.Context, id string, premium bool) (*entity.User, error)
}

// EntryFilter narrows and pages entry listings.
type EntryFilter struct {
	JournalID string // empty or "all" means no journal filter
	Page      int
	Limit     int
	SortDesc  bool // by created_at; default true (newest first)
}

// MonthCount is one bucket of the entries-by-month aggregate.
type MonthCount struct {
	Year  int
	Month int
	Count int64
}

// EntryStats aggregates a user's writing activity.
type EntryStats struct {
	TotalEntries int64
	TotalMedia   int64
	ByMonth      []MonthCount // newest first, at most 12 buckets
}

type EntryRepository interface {
	Create(ctx context.Context, e *entity.Entry) error
	GetByID(ctx context.Context, userID, id string) (*entity.Entry, error)
	ListByUser(ctx context.Context, userID string, f EntryFilter) ([]*entity.Entry, int64, error)
	// ListNearby returns located entries within radiusMeters of the point,
	// nearest first.
	ListNearby(ctx context.Context, userID string, lon, lat, radiusMeters float64) ([]*entity.Entry, error)
	Stats(ctx context.Context, userID string) (*EntryStats, error)
	Update(ctx context.Context, e *entity.Entry) error
	Delete(ctx context.Context, userID, id string) error
}

type JournalRepository interface {
	Create(ctx context.Context, j *entity.Journal) error
	GetByID(ctx context.Context, userID, id string) (*entity.Journal, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Journal, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Update(ctx context.Context, j *entity.Journal) error
	// Delete removes the journal and clears journal_id on its entries.
	Delete(ctx context.Context, userID, id string) error
}
