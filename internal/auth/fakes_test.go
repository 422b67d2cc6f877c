package auth

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
	"github.com/diaryfi/diaryfi-api/internal/domain/repository"
	"github.com/diaryfi/diaryfi-api/pkg/mailer"
	"github.com/diaryfi/diaryfi-api/pkg/oauth"
)

// fakeUserRepo is an in-memory UserRepository mirroring the SQL semantics of
// the postgres implementation closely enough for orchestrator tests.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.AuthMethods = append([]entity.AuthMethod(nil), u.AuthMethods...)
	return &c
}

// get returns the live record for direct state inspection in tests.
func (r *fakeUserRepo) get(id string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Email == u.Email {
			return fmt.Errorf("duplicate email %q", u.Email)
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByProvider(_ context.Context, method entity.AuthMethod, providerID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		switch method {
		case entity.AuthMethodGoogle:
			if u.GoogleID == providerID {
				return cloneUser(u), nil
			}
		case entity.AuthMethodApple:
			if u.AppleID == providerID {
				return cloneUser(u), nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id, name, avatarURL string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

func (r *fakeUserRepo) SetPassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) SetEmailOTP(_ context.Context, id, code string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailOTP = code
	u.EmailOTPExpires = &expires
	u.OTPAttempts = 0
	return nil
}

func (r *fakeUserRepo) IncrementOTPAttempts(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.OTPAttempts++
	return u.OTPAttempts, nil
}

func (r *fakeUserRepo) CompleteEmailVerification(_ context.Context, id string, addEmailMethod bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsEmailVerified = true
	u.EmailOTP = ""
	u.EmailOTPExpires = nil
	u.OTPAttempts = 0
	if addEmailMethod && !u.HasMethod(entity.AuthMethodEmail) {
		u.AuthMethods = append(u.AuthMethods, entity.AuthMethodEmail)
	}
	return nil
}

func (r *fakeUserRepo) RecordLoginFailure(_ context.Context, id string, maxAttempts int, lockFor time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LoginAttempts++
	if u.LoginAttempts >= maxAttempts {
		u.IsLocked = true
		until := time.Now().Add(lockFor)
		u.LockUntil = &until
	}
	return nil
}

func (r *fakeUserRepo) RecordLoginSuccess(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LoginAttempts = 0
	u.IsLocked = false
	u.LockUntil = nil
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordResetToken = token
	u.PasswordResetExpires = &expires
	return nil
}

func (r *fakeUserRepo) ConsumeResetToken(_ context.Context, token, newHash string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PasswordResetToken != token || u.PasswordResetExpires == nil || !u.PasswordResetExpires.After(now) {
			continue
		}
		u.PasswordHash = newHash
		if !u.HasMethod(entity.AuthMethodEmail) {
			u.AuthMethods = append(u.AuthMethods, entity.AuthMethodEmail)
		}
		u.PasswordResetToken = ""
		u.PasswordResetExpires = nil
		return cloneUser(u), nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) LinkProvider(_ context.Context, id string, method entity.AuthMethod, providerID, avatarURL string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	switch method {
	case entity.AuthMethodGoogle:
		u.GoogleID = providerID
	case entity.AuthMethodApple:
		u.AppleID = providerID
	}
	if !u.HasMethod(method) {
		u.AuthMethods = append(u.AuthMethods, method)
	}
	u.IsEmailVerified = true
	if u.AvatarURL == "" && avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	now := time.Now()
	u.LastLogin = &now
	return cloneUser(u), nil
}

func (r *fakeUserRepo) SetPremium(_ context.Context, id string, premium bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsPremium = premium
	return cloneUser(u), nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakeQueue records published email jobs.
type fakeQueue struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (q *fakeQueue) PublishJSON(_ context.Context, body any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	if job, ok := body.(mailer.EmailJob); ok {
		q.jobs = append(q.jobs, job)
	}
	return nil
}

func (q *fakeQueue) last() mailer.EmailJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return mailer.EmailJob{}
	}
	return q.jobs[len(q.jobs)-1]
}

func (q *fakeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// fakeVerifier returns a canned identity for any token, or an error.
type fakeVerifier struct {
	identity *oauth.Identity
	err      error
}

func (v *fakeVerifier) Verify(context.Context, string) (*oauth.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
