package entity

import "time"

// DefaultJournalColor is applied when a journal is created without one.
const DefaultJournalColor = "#3B9EFF"

// Journal is a named collection of entries owned by a user. Deleting a
// journal clears the reference on its entries; the entries survive.
type Journal struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string

	// EntryCount is populated on reads; it is not a stored column.
	EntryCount int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
