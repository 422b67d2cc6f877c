package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
)

// userColumns is the canonical select list; every reader goes through
// scanUser so nullable columns are normalized in one place.
const userColumns = `
	id, email, name, avatar_url,
	COALESCE(password_hash, ''), COALESCE(google_id, ''), COALESCE(apple_id, ''),
	auth_methods, is_email_verified,
	COALESCE(email_otp, ''), email_otp_expires, otp_attempts,
	COALESCE(password_reset_token, ''), password_reset_expires,
	login_attempts, is_locked, lock_until,
	last_login, is_premium, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	var methods []string
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.AvatarURL,
		&u.PasswordHash, &u.GoogleID, &u.AppleID,
		&methods, &u.IsEmailVerified,
		&u.EmailOTP, &u.EmailOTPExpires, &u.OTPAttempts,
		&u.PasswordResetToken, &u.PasswordResetExpires,
		&u.LoginAttempts, &u.IsLocked, &u.LockUntil,
		&u.LastLogin, &u.IsPremium, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.AuthMethods = make([]entity.AuthMethod, 0, len(methods))
	for _, m := range methods {
		u.AuthMethods = append(u.AuthMethods, entity.AuthMethod(m))
	}
	return u, nil
}

func methodsToStrings(methods []entity.AuthMethod) []string {
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		out = append(out, string(m))
	}
	return out
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, password_hash, google_id, apple_id,
			auth_methods, is_email_verified, last_login)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Name, u.AvatarURL, u.PasswordHash, u.GoogleID, u.AppleID,
		methodsToStrings(u.AuthMethods), u.IsEmailVerified, u.LastLogin)

	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByProvider(ctx context.Context, method entity.AuthMethod, providerID string) (*entity.User, error) {
	col, err := providerColumn(method)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+col+` = $1`, providerID)
	return scanUser(row)
}

func providerColumn(method entity.AuthMethod) (string, error) {
	switch method {
	case entity.AuthMethodGoogle:
		return "google_id", nil
	case entity.AuthMethodApple:
		return "apple_id", nil
	default:
		return "", fmt.Errorf("no provider column for auth method %q", method)
	}
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, avatarURL string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			name       = CASE WHEN $2 <> '' THEN $2 ELSE name END,
			avatar_url = CASE WHEN $3 <> '' THEN $3 ELSE avatar_url END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, name, avatarURL)
	return scanUser(row)
}

func (r *UserRepository) SetPassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, hash)
}

func (r *UserRepository) SetEmailOTP(ctx context.Context, id, code string, expires time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET
			email_otp = $2, email_otp_expires = $3, otp_attempts = 0, updated_at = now()
		WHERE id = $1
	`, id, code, expires)
}

func (r *UserRepository) IncrementOTPAttempts(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET otp_attempts = otp_attempts + 1, updated_at = now()
		WHERE id = $1
		RETURNING otp_attempts
	`, id).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNotFound
	}
	return attempts, err
}

func (r *UserRepository) CompleteEmailVerification(ctx context.Context, id string, addEmailMethod bool) error {
	return r.exec(ctx, `
		UPDATE users SET
			is_email_verified = TRUE,
			email_otp = NULL, email_otp_expires = NULL, otp_attempts = 0,
			auth_methods = CASE
				WHEN $2 AND NOT ('email' = ANY(auth_methods)) THEN array_append(auth_methods, 'email')
				ELSE auth_methods
			END,
			updated_at = now()
		WHERE id = $1
	`, id, addEmailMethod)
}

// RecordLoginFailure is a single statement so two racing failures both land:
// the lock decision reads the incremented counter inside the UPDATE.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockFor time.Duration) error {
	return r.exec(ctx, `
		UPDATE users SET
			login_attempts = login_attempts + 1,
			is_locked  = (login_attempts + 1 >= $2),
			lock_until = CASE WHEN login_attempts + 1 >= $2 THEN now() + $3 ELSE lock_until END,
			updated_at = now()
		WHERE id = $1
	`, id, maxAttempts, lockFor)
}

func (r *UserRepository) RecordLoginSuccess(ctx context.Context, id string) error {
	return r.exec(ctx, `
		UPDATE users SET
			login_attempts = 0, is_locked = FALSE, lock_until = NULL,
			last_login = now(), updated_at = now()
		WHERE id = $1
	`, id)
}

func (r *UserRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET
			password_reset_token = $2, password_reset_expires = $3, updated_at = now()
		WHERE id = $1
	`, id, token, expires)
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			password_hash = $2,
			auth_methods = CASE
				WHEN NOT ('email' = ANY(auth_methods)) THEN array_append(auth_methods, 'email')
				ELSE auth_methods
			END,
			password_reset_token = NULL, password_reset_expires = NULL,
			updated_at = now()
		WHERE password_reset_token = $1 AND password_reset_expires > $3
		RETURNING `+userColumns,
		token, newHash, now)
	return scanUser(row)
}

func (r *UserRepository) LinkProvider(ctx context.Context, id string, method entity.AuthMethod, providerID, avatarURL string) (*entity.User, error) {
	col, err := providerColumn(method)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			`+col+` = $2,
			auth_methods = CASE
				WHEN NOT ($3 = ANY(auth_methods)) THEN array_append(auth_methods, $3)
				ELSE auth_methods
			END,
			is_email_verified = TRUE,
			avatar_url = CASE WHEN avatar_url = '' AND $4 <> '' THEN $4 ELSE avatar_url END,
			last_login = now(), updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, providerID, string(method), avatarURL)
	return scanUser(row)
}

func (r *UserRepository) SetPremium(ctx context.Context, id string, premium bool) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_premium = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, premium)
	return scanUser(row)
}

func (r *UserRepository) exec(ctx context.Context, sql string, args ...any) error {
	res, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
