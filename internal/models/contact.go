package models

import "time"

// Contact represents a single known email recipient.
// Exactly one row exists per email address; the email is the natural
// key for import matching, never the upstream external id.
type Contact struct {
	ID             string     `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	FirstName      *string    `json:"firstName,omitempty" db:"first_name"`
	LastName       *string    `json:"lastName,omitempty" db:"last_name"`
	IsUnsubscribed bool       `json:"isUnsubscribed" db:"is_unsubscribed"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty" db:"unsubscribed_at"`
	ExternalID     *string    `json:"externalId,omitempty" db:"external_id"`
	LastImportedAt *time.Time `json:"lastImportedAt,omitempty" db:"last_imported_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}
