package importer

import (
	"context"
	"strings"
	"time"

	"github.com/contact-sync/internal/intercom"
	"github.com/contact-sync/internal/models"
	"github.com/google/uuid"
)

// Outcome classifies what the upsert policy did with one record
type Outcome int

const (
	// OutcomeImported means a new contact row was created
	OutcomeImported Outcome = iota
	// OutcomeUpdated means an existing contact was refreshed
	OutcomeUpdated
	// OutcomeSkipped means the record was excluded by policy
	OutcomeSkipped
)

// UpsertPolicy applies one upstream record to the contact store.
// Matching is by exact email; the upstream external id is stored for
// traceability but never used as a key.
type UpsertPolicy struct {
	contacts ContactStore
}

// NewUpsertPolicy creates a new upsert policy
func NewUpsertPolicy(contacts ContactStore) *UpsertPolicy {
	return &UpsertPolicy{contacts: contacts}
}

// Apply processes a single upstream record. importedAt is the start
// time of the current run, shared by every record the run touches so
// the next incremental run can use it as a watermark.
func (p *UpsertPolicy) Apply(ctx context.Context, record intercom.Contact, importedAt time.Time) (Outcome, error) {
	if record.Email == "" {
		return OutcomeSkipped, nil
	}

	// Plus-addressed emails (tagged aliases) are excluded from import.
	if strings.Contains(record.Email, "+") {
		return OutcomeSkipped, nil
	}

	existing, err := p.contacts.GetByEmail(ctx, record.Email)
	if err != nil {
		return OutcomeSkipped, err
	}

	firstName, lastName := splitName(record.Name)
	externalID := optional(record.ID)

	if existing != nil {
		// Unsubscribe status is sticky: a re-import must never flip a
		// contact back to subscribed, so only import-owned fields move.
		if err := p.contacts.UpdateFromImport(ctx, existing.ID, externalID, firstName, lastName, importedAt); err != nil {
			return OutcomeSkipped, err
		}
		return OutcomeUpdated, nil
	}

	contact := &models.Contact{
		ID:             uuid.New().String(),
		Email:          record.Email,
		FirstName:      firstName,
		LastName:       lastName,
		IsUnsubscribed: false,
		ExternalID:     externalID,
		LastImportedAt: &importedAt,
		CreatedAt:      time.Now().UTC(),
	}
	if err := p.contacts.Insert(ctx, contact); err != nil {
		return OutcomeSkipped, err
	}

	return OutcomeImported, nil
}

// splitName splits an upstream display name on the first space into
// first and last name parts
func splitName(name string) (first, last *string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	parts := strings.SplitN(name, " ", 2)
	first = &parts[0]
	if len(parts) == 2 && parts[1] != "" {
		last = &parts[1]
	}
	return first, last
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
