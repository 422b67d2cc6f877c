package handlers

import (
	"time"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
)

// UserView is the user summary returned by auth and profile endpoints.
// Credential and lockout state never leaves the server.
type UserView struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	AuthMethods     []string  `json:"auth_methods"`
	IsEmailVerified bool      `json:"is_email_verified"`
	IsPremium       bool      `json:"is_premium"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toUserView(u *entity.User) UserView {
	methods := make([]string, 0, len(u.AuthMethods))
	for _, m := range u.AuthMethods {
		methods = append(methods, string(m))
	}
	return UserView{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		AvatarURL:       u.AvatarURL,
		AuthMethods:     methods,
		IsEmailVerified: u.IsEmailVerified,
		IsPremium:       u.IsPremium,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
	}
}

// SessionView pairs a freshly minted token with the signed-in user.
type SessionView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

// JournalView includes the read-only entry count.
type JournalView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon,omitempty"`
	EntryCount  int64     `json:"entry_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toJournalView(j *entity.Journal) JournalView {
	return JournalView{
		ID:          j.ID,
		Name:        j.Name,
		Description: j.Description,
		Color:       j.Color,
		Icon:        j.Icon,
		EntryCount:  j.EntryCount,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func toJournalViews(js []*entity.Journal) []JournalView {
	out := make([]JournalView, 0, len(js))
	for _, j := range js {
		out = append(out, toJournalView(j))
	}
	return out
}

type EntryView struct {
	ID          string              `json:"id"`
	JournalID   string              `json:"journal_id,omitempty"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	FormatSpans []entity.FormatSpan `json:"format_spans"`
	Media       []entity.Media      `json:"media"`
	Location    *entity.Location    `json:"location,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toEntryView(e *entity.Entry) EntryView {
	spans := e.FormatSpans
	if spans == nil {
		spans = []entity.FormatSpan{}
	}
	media := e.Media
	if media == nil {
		media = []entity.Media{}
	}
	return EntryView{
		ID:          e.ID,
		JournalID:   e.JournalID,
		Title:       e.Title,
		Description: e.Description,
		FormatSpans: spans,
		Media:       media,
		Location:    e.Location,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toEntryViews(es []*entity.Entry) []EntryView {
	out := make([]EntryView, 0, len(es))
	for _, e := range es {
		out = append(out, toEntryView(e))
	}
	return out
}
