package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/helpers"
	"github.com/diaryfi/diaryfi-api/pkg/mailer"
	"github.com/diaryfi/diaryfi-api/pkg/mailer/templates"
	"github.com/diaryfi/diaryfi-api/pkg/oauth"
)

const tempPasswordDigits = 6

// JobQueue publishes email jobs for the worker. Satisfied by
// helpers.RabbitPublisher.
type JobQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// Session is the result of any operation that signs a user in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// RegisterResult tells the client whether a brand-new account was created or
// a password was staged onto an existing social account; both continue into
// the OTP verification flow.
type RegisterResult struct {
	Email   string
	Linking bool
}

// Service is the auth orchestrator: the stateless entry points that compose
// the credential store, OTP engine, account linker, login guard and token
// issuer.
type Service struct {
	users  repository.UserRepository
	otp    *OTPEngine
	guard  *LoginGuard
	linker AccountLinker
	tokens *helpers.JWTManager
	queue  JobQueue
	google oauth.Verifier
	apple  oauth.Verifier
	log    *logrus.Logger

	appName       string
	resetTokenTTL time.Duration
	resetBaseURL  string

	now func() time.Time
}

type ServiceDeps struct {
	Users         repository.UserRepository
	OTP           *OTPEngine
	Guard         *LoginGuard
	Tokens        *helpers.JWTManager
	Queue         JobQueue
	Google        oauth.Verifier
	Apple         oauth.Verifier
	Logger        *logrus.Logger
	AppName       string
	ResetTokenTTL time.Duration
	ResetBaseURL  string
}

func NewService(d ServiceDeps) *Service {
	return &Service{
		users:         d.Users,
		otp:           d.OTP,
		guard:         d.Guard,
		tokens:        d.Tokens,
		queue:         d.Queue,
		google:        d.Google,
		apple:         d.Apple,
		log:           d.Logger,
		appName:       d.AppName,
		resetTokenTTL: d.ResetTokenTTL,
		resetBaseURL:  d.ResetBaseURL,
		now:           time.Now,
	}
}

// Register creates an account for the email, or stages a password onto an
// existing social-only account. Both paths leave a pending OTP.
func (s *Service) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	code, expires, err := s.otp.Issue(now)
	if err != nil {
		return nil, err
	}

	res := &RegisterResult{Email: email}
	switch s.linker.DecideRegister(existing) {
	case RegisterConflict:
		return nil, ErrAccountExists

	case RegisterStagePassword:
		res.Linking = true
		if err := s.users.SetPassword(ctx, existing.ID, hash); err != nil {
			return nil, err
		}
		if err := s.users.SetEmailOTP(ctx, existing.ID, code, expires); err != nil {
			return nil, err
		}
		name = existing.Name

	case RegisterCreate:
		u := &entity.User{
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			AuthMethods:  []entity.AuthMethod{entity.AuthMethodEmail},
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		if err := s.users.SetEmailOTP(ctx, u.ID, code, expires); err != nil {
			return nil, err
		}
	}

	if err := s.sendOTPEmail(ctx, name, email, code); err != nil {
		// The code is already persisted; resend-otp is the recovery path.
		return nil, fmt.Errorf("queue verification email: %w", err)
	}
	return res, nil
}

// VerifyOTP checks the pending code and, on success, marks the email
// verified, completes a pending password link, and signs the user in.
// Failed attempts are persisted even though the request fails.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrOTPInvalid
	}

	if err := s.otp.Check(u, code, s.now()); err != nil {
		if !errors.Is(err, errOTPMismatch) {
			return nil, err
		}
		attempts, incErr := s.users.IncrementOTPAttempts(ctx, u.ID)
		if incErr != nil {
			return nil, incErr
		}
		remaining := s.otp.MaxAttempts - attempts
		if remaining <= 0 {
			return nil, ErrOTPTooManyAttempts
		}
		return nil, &OTPMismatchError{Remaining: remaining}
	}

	// A staged password joins auth_methods only now, once the address is
	// proven.
	addEmail := u.PasswordHash != "" && !u.HasMethod(entity.AuthMethodEmail)
	if err := s.users.CompleteEmailVerification(ctx, u.ID, addEmail); err != nil {
		return nil, err
	}
	if err := s.users.RecordLoginSuccess(ctx, u.ID); err != nil {
		return nil, err
	}
	return s.startSession(ctx, u.ID)
}

// ResendOTP reissues the pending code. It always reports success so account
// existence is never revealed; nothing is issued for addresses without a
// verification in progress.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	pendingLink := u.PasswordHash != "" && !u.HasMethod(entity.AuthMethodEmail)
	if u.IsEmailVerified && !pendingLink {
		return nil
	}

	now := s.now()
	code, expires, err := s.otp.Issue(now)
	if err != nil {
		return err
	}
	if err := s.users.SetEmailOTP(ctx, u.ID, code, expires); err != nil {
		return err
	}
	return s.sendOTPEmail(ctx, u.Name, u.Email, code)
}

// Login authenticates email+password. The lock gate runs before the password
// comparison; an unverified email blocks login only after a successful match.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.guard.Gate(u, s.now()); err != nil {
		return nil, err
	}

	if u.PasswordHash == "" {
		return nil, ErrUseSocialLogin
	}

	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		if err := s.users.RecordLoginFailure(ctx, u.ID, s.guard.MaxAttempts, s.guard.LockFor); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Error("record login failure")
		}
		return nil, ErrInvalidCredentials
	}

	if !u.IsEmailVerified || !u.HasMethod(entity.AuthMethodEmail) {
		return nil, ErrEmailNotVerified
	}

	if err := s.users.RecordLoginSuccess(ctx, u.ID); err != nil {
		return nil, err
	}
	return s.startSession(ctx, u.ID)
}

// ForgotPassword issues a 6-digit temporary password that immediately
// authenticates via login. Always reports success; social-only accounts are
// skipped (they use the password-setup link instead).
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil || !u.HasMethod(entity.AuthMethodEmail) {
		return nil
	}

	temp, err := helpers.GenNumericCode(tempPasswordDigits)
	if err != nil {
		return err
	}
	hash, err := helpers.HashPassword(temp)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, u.ID, hash); err != nil {
		return err
	}

	data := templates.NewEmailData(s.appName, u.Name, u.Email, templates.WithCode(temp))
	return s.queue.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: templates.TempPassword,
		Data:     templates.ToMap(data),
	})
}

// PasswordSetupLink emails a time-limited reset link so a social-only
// account can add a password. Always reports success; accounts that already
// have the email method use ForgotPassword instead.
func (s *Service) PasswordSetupLink(ctx context.Context, email string) error {
	u, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil || u.HasMethod(entity.AuthMethodEmail) {
		return nil
	}

	token := uuid.NewString()
	expires := s.now().Add(s.resetTokenTTL)
	if err := s.users.SetResetToken(ctx, u.ID, token, expires); err != nil {
		return err
	}

	data := templates.NewEmailData(s.appName, u.Name, u.Email,
		templates.WithResetURL(s.resetURL(token)),
		templates.WithExpiresIn(s.resetTokenTTL))
	return s.queue.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: templates.ResetPassword,
		Data:     templates.ToMap(data),
	})
}

// ResetPassword consumes a reset token and installs the new password. The
// email method joins auth_methods as part of the same store operation.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = s.users.ConsumeResetToken(ctx, token, hash, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidResetToken
	}
	return err
}

// ChangePassword rotates the password for an authenticated user.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrNoPassword
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if helpers.CompareHashAndPassword(u.PasswordHash, newPassword) {
		return ErrSamePassword
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, u.ID, hash)
}

// SignInWithGoogle exchanges a Google ID token for a session, creating or
// linking the account as needed.
func (s *Service) SignInWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	return s.oauthSignIn(ctx, s.google, entity.AuthMethodGoogle, idToken)
}

// SignInWithApple exchanges an Apple ID token for a session, creating or
// linking the account as needed.
func (s *Service) SignInWithApple(ctx context.Context, idToken string) (*Session, error) {
	return s.oauthSignIn(ctx, s.apple, entity.AuthMethodApple, idToken)
}

func (s *Service) oauthSignIn(ctx context.Context, v oauth.Verifier, method entity.AuthMethod, idToken string) (*Session, error) {
	id, err := v.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	byProvider, err := s.users.GetByProvider(ctx, method, id.Subject)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	var byEmail *entity.User
	if byProvider == nil {
		byEmail, err = s.findByEmail(ctx, id.Email)
		if err != nil {
			return nil, err
		}
	}

	switch s.linker.DecideOAuth(byProvider, byEmail) {
	case OAuthSignIn:
		if err := s.users.RecordLoginSuccess(ctx, byProvider.ID); err != nil {
			return nil, err
		}
		return s.startSession(ctx, byProvider.ID)

	case OAuthLink:
		linked, err := s.users.LinkProvider(ctx, byEmail.ID, method, id.Subject, id.Picture)
		if err != nil {
			return nil, err
		}
		s.log.WithFields(logrus.Fields{"user_id": linked.ID, "provider": method}).Info("provider linked to existing account")
		return s.session(linked)

	default: // OAuthCreate
		now := s.now()
		name := id.Name
		if name == "" {
			// Apple never puts the name in the identity token.
			name = emailLocalPart(id.Email)
		}
		u := &entity.User{
			Email:           id.Email,
			Name:            name,
			AvatarURL:       id.Picture,
			AuthMethods:     []entity.AuthMethod{method},
			IsEmailVerified: true,
			LastLogin:       &now,
		}
		switch method {
		case entity.AuthMethodGoogle:
			u.GoogleID = id.Subject
		case entity.AuthMethodApple:
			u.AppleID = id.Subject
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, err
		}
		return s.session(u)
	}
}

// GetMe returns the current user's record.
func (s *Service) GetMe(ctx context.Context, userID string) (*entity.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile updates the display name and/or avatar URL. Empty values
// leave the current ones in place.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, avatarURL string) (*entity.User, error) {
	return s.users.UpdateProfile(ctx, userID, name, avatarURL)
}

func (s *Service) findByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *Service) startSession(ctx context.Context, userID string) (*Session, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.session(u)
}

func (s *Service) session(u *entity.User) (*Session, error) {
	token, exp, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) sendOTPEmail(ctx context.Context, name, email, code string) error {
	data := templates.NewEmailData(s.appName, name, email,
		templates.WithCode(code),
		templates.WithExpiresIn(s.otp.TTL))
	return s.queue.PublishJSON(ctx, mailer.EmailJob{
		To:       email,
		Template: templates.VerifyOTP,
		Data:     templates.ToMap(data),
	})
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}

func (s *Service) resetURL(token string) string {
	return s.resetBaseURL + "?token=" + url.QueryEscape(token)
}
