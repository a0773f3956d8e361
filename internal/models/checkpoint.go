package models

import "time"

// ImportCheckpoint tracks pagination progress for one upstream source.
// At most one row exists per source; it is created lazily on the first
// import attempt and updated in place after every fetched page.
// IsInProgress is the mutual-exclusion flag for the source.
type ImportCheckpoint struct {
	Source                string    `json:"source" db:"source"`
	LastCursor            *string   `json:"lastCursor,omitempty" db:"last_cursor"`
	LastExternalContactID *string   `json:"lastExternalContactId,omitempty" db:"last_external_contact_id"`
	IsInProgress          bool      `json:"isInProgress" db:"is_in_progress"`
	UpdatedAt             time.Time `json:"updatedAt" db:"updated_at"`
}
