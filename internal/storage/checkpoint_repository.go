package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/contact-sync/internal/models"
	"github.com/jackc/pgx/v5"
)

// CheckpointRepository handles import checkpoint persistence.
// One row exists per source; the is_in_progress flag is the
// cross-process mutual-exclusion guard for import runs.
type CheckpointRepository struct {
	db *PostgresDB
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *PostgresDB) *CheckpointRepository {
	return &CheckpointRepository{db: db}
}

const checkpointColumns = `source, last_cursor, last_external_contact_id, is_in_progress, updated_at`

func scanCheckpoint(row pgx.Row) (*models.ImportCheckpoint, error) {
	var cp models.ImportCheckpoint
	err := row.Scan(
		&cp.Source,
		&cp.LastCursor,
		&cp.LastExternalContactID,
		&cp.IsInProgress,
		&cp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Get retrieves the checkpoint for a source.
// Returns (nil, nil) when no checkpoint exists yet.
func (r *CheckpointRepository) Get(ctx context.Context, source string) (*models.ImportCheckpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM import_checkpoints
		WHERE source = $1
	`

	cp, err := scanCheckpoint(r.db.Pool().QueryRow(ctx, query, source))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	return cp, nil
}

// Acquire claims the checkpoint for an import run with a single
// conditional statement: the row is created if absent, and the
// in-progress flag is flipped only when no other run holds it. The
// cursor is left as-is so an interrupted run can be resumed.
// Returns the current checkpoint and whether the claim succeeded.
func (r *CheckpointRepository) Acquire(ctx context.Context, source string) (*models.ImportCheckpoint, bool, error) {
	query := `
		INSERT INTO import_checkpoints (source, is_in_progress, updated_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (source) DO UPDATE
		SET is_in_progress = TRUE, updated_at = NOW()
		WHERE import_checkpoints.is_in_progress = FALSE
		RETURNING ` + checkpointColumns + `
	`

	cp, err := scanCheckpoint(r.db.Pool().QueryRow(ctx, query, source))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conditional update matched nothing: another run holds the flag.
			current, getErr := r.Get(ctx, source)
			if getErr != nil {
				return nil, false, getErr
			}
			return current, false, nil
		}
		return nil, false, fmt.Errorf("failed to acquire checkpoint: %w", err)
	}

	return cp, true, nil
}

// SavePage persists the cursor of the most recently fetched page and
// the last processed upstream contact id (diagnostic).
func (r *CheckpointRepository) SavePage(ctx context.Context, source, cursor, lastExternalContactID string) error {
	query := `
		UPDATE import_checkpoints
		SET last_cursor = $2, last_external_contact_id = NULLIF($3, ''), updated_at = NOW()
		WHERE source = $1
	`

	result, err := r.db.Pool().Exec(ctx, query, source, cursor, lastExternalContactID)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint page: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("checkpoint not found for source %s", source)
	}

	return nil
}

// Finalize releases the checkpoint by flipping only the in-progress
// flag and the timestamp. The cursor is never touched here so that a
// failed run leaves a valid resumption point behind.
func (r *CheckpointRepository) Finalize(ctx context.Context, source string) error {
	query := `
		UPDATE import_checkpoints
		SET is_in_progress = FALSE, updated_at = NOW()
		WHERE source = $1
	`

	result, err := r.db.Pool().Exec(ctx, query, source)
	if err != nil {
		return fmt.Errorf("failed to finalize checkpoint: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("checkpoint not found for source %s", source)
	}

	return nil
}
