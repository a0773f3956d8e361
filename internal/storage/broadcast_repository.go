package storage

import (
	"context"
	"fmt"

	"github.com/contact-sync/internal/models"
)

// BroadcastRepository handles broadcast record persistence
type BroadcastRepository struct {
	db *PostgresDB
}

// NewBroadcastRepository creates a new broadcast repository
func NewBroadcastRepository(db *PostgresDB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// Create inserts a new broadcast record
func (r *BroadcastRepository) Create(ctx context.Context, broadcast *models.Broadcast) error {
	query := `
		INSERT INTO broadcasts (id, name, subject, provider_message_id, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		broadcast.ID,
		broadcast.Name,
		broadcast.Subject,
		broadcast.ProviderMessageID,
		broadcast.SentAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create broadcast: %w", err)
	}

	return nil
}

// SetProviderMessageID records the provider-side id after a successful send
func (r *BroadcastRepository) SetProviderMessageID(ctx context.Context, id, providerMessageID string) error {
	query := `
		UPDATE broadcasts
		SET provider_message_id = $2
		WHERE id = $1
	`

	result, err := r.db.Pool().Exec(ctx, query, id, providerMessageID)
	if err != nil {
		return fmt.Errorf("failed to set provider message id: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("broadcast not found: %s", id)
	}

	return nil
}

// Count returns the total number of broadcast records
func (r *BroadcastRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM broadcasts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count broadcasts: %w", err)
	}

	return count, nil
}
