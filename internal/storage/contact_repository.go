package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contact-sync/internal/models"
	"github.com/jackc/pgx/v5"
)

// ContactRepository handles contact data persistence
type ContactRepository struct {
	db *PostgresDB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *PostgresDB) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `id, email, first_name, last_name, is_unsubscribed,
	   unsubscribed_at, external_id, last_imported_at, created_at`

func scanContact(row pgx.Row) (*models.Contact, error) {
	var c models.Contact
	err := row.Scan(
		&c.ID,
		&c.Email,
		&c.FirstName,
		&c.LastName,
		&c.IsUnsubscribed,
		&c.UnsubscribedAt,
		&c.ExternalID,
		&c.LastImportedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByEmail retrieves a contact by exact email match.
// Returns (nil, nil) when no contact exists for the email.
func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE email = $1
	`

	contact, err := scanContact(r.db.Pool().QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact by email: %w", err)
	}

	return contact, nil
}

// Insert creates a new contact record
func (r *ContactRepository) Insert(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (
			id, email, first_name, last_name, is_unsubscribed,
			unsubscribed_at, external_id, last_imported_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		contact.ID,
		contact.Email,
		contact.FirstName,
		contact.LastName,
		contact.IsUnsubscribed,
		contact.UnsubscribedAt,
		contact.ExternalID,
		contact.LastImportedAt,
		contact.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	return nil
}

// UpdateFromImport refreshes the import-owned fields of an existing
// contact. Unsubscribe status is deliberately left untouched: it is
// sticky and import-independent.
func (r *ContactRepository) UpdateFromImport(ctx context.Context, id string, externalID, firstName, lastName *string, importedAt time.Time) error {
	query := `
		UPDATE contacts
		SET external_id = $2, first_name = $3, last_name = $4, last_imported_at = $5
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query, id, externalID, firstName, lastName, importedAt)
	if err != nil {
		return fmt.Errorf("failed to update contact from import: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("contact not found: %s", id)
	}

	return nil
}

// MarkUnsubscribed flips a contact to unsubscribed. A contact that is
// already unsubscribed keeps its original unsubscribed_at timestamp.
// Unknown emails are ignored: webhooks may reference contacts that
// were never imported.
func (r *ContactRepository) MarkUnsubscribed(ctx context.Context, email string, at time.Time) error {
	query := `
		UPDATE contacts
		SET is_unsubscribed = TRUE,
			unsubscribed_at = COALESCE(unsubscribed_at, $2)
		WHERE email = $1
	`

	if _, err := r.db.Pool().Exec(ctx, query, email, at); err != nil {
		return fmt.Errorf("failed to mark contact unsubscribed: %w", err)
	}

	return nil
}

// ImportWatermark returns the most recent last_imported_at across all
// contacts, or nil when no contact has ever been imported. Incremental
// runs use it as the upstream updated_since filter.
func (r *ContactRepository) ImportWatermark(ctx context.Context) (*time.Time, error) {
	query := `SELECT MAX(last_imported_at) FROM contacts`

	var watermark *time.Time
	if err := r.db.Pool().QueryRow(ctx, query).Scan(&watermark); err != nil {
		return nil, fmt.Errorf("failed to get import watermark: %w", err)
	}

	return watermark, nil
}

// ListSubscribedEmails returns the emails of all contacts that have not
// unsubscribed, in stable order for batch enrollment.
func (r *ContactRepository) ListSubscribedEmails(ctx context.Context) ([]string, error) {
	query := `
		SELECT email
		FROM contacts
		WHERE is_unsubscribed = FALSE
		ORDER BY created_at, email
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribed emails: %w", err)
	}

	return emails, nil
}

// Counts holds the aggregate contact counts for the dashboard
type Counts struct {
	Total        int64
	Subscribed   int64
	Unsubscribed int64
}

// CountContacts returns total/subscribed/unsubscribed contact counts
func (r *ContactRepository) CountContacts(ctx context.Context) (*Counts, error) {
	query := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE is_unsubscribed = FALSE),
			   COUNT(*) FILTER (WHERE is_unsubscribed = TRUE)
		FROM contacts
	`

	var counts Counts
	err := r.db.Pool().QueryRow(ctx, query).Scan(
		&counts.Total,
		&counts.Subscribed,
		&counts.Unsubscribed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	return &counts, nil
}
