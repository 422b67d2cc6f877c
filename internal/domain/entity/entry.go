package entity

import "time"

// MediaType enumerates the attachment kinds an entry supports.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaPDF   MediaType = "pdf"
)

// Media is one uploaded attachment. ObjectPath is the GCS object name used
// for deletion; URL is the public URL served to clients.
type Media struct {
	ID         string    `json:"id"`
	Type       MediaType `json:"type"`
	URL        string    `json:"url"`
	ObjectPath string    `json:"object_path"`
	Filename   string    `json:"filename,omitempty"`
	Size       int64     `json:"size,omitempty"`
	Duration   float64   `json:"duration,omitempty"` // seconds, audio/video only
}

// FormatSpan is a rich-text styling range over the entry description.
type FormatSpan struct {
	Start         int  `json:"start"`
	End           int  `json:"end"`
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	HeadingLevel  int  `json:"headingLevel,omitempty"`
}

// Location is the optional geo point attached to an entry.
type Location struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Address   string  `json:"address,omitempty"`
}

// Entry is a single diary entry. It belongs to exactly one user and
// optionally one journal.
type Entry struct {
	ID        string
	UserID    string
	JournalID string // empty when not filed under a journal

	Title       string
	Description string
	FormatSpans []FormatSpan
	Media       []Media
	Location    *Location

	// CreatedAt is client-overridable: backdated entries are a feature.
	CreatedAt time.Time
	UpdatedAt time.Time
}
