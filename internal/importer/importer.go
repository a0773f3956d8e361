// Package importer implements the resumable contact import pipeline:
// cursor-based pagination against the upstream source, per-page
// checkpointing, and per-record error isolation.
package importer

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/contact-sync/internal/errors"
	"github.com/contact-sync/internal/intercom"
	"github.com/contact-sync/internal/logging"
	"github.com/contact-sync/internal/models"
)

// Mode selects how an import run treats prior history
type Mode string

const (
	// ModeFull fetches the entire upstream contact set
	ModeFull Mode = "full"
	// ModeIncremental fetches only records updated since the last
	// successful import watermark
	ModeIncremental Mode = "incremental"
	// ModeResume continues an interrupted run from the persisted
	// cursor, ignoring the incremental time filter
	ModeResume Mode = "resume"
)

// ContactSource fetches pages of contacts from the upstream API
type ContactSource interface {
	Configured() bool
	FetchPage(ctx context.Context, req intercom.PageRequest) (*intercom.Page, error)
}

// ContactStore is the persistence surface the import pipeline needs
// from the contact table
type ContactStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Contact, error)
	Insert(ctx context.Context, contact *models.Contact) error
	UpdateFromImport(ctx context.Context, id string, externalID, firstName, lastName *string, importedAt time.Time) error
	ImportWatermark(ctx context.Context) (*time.Time, error)
}

// CheckpointStore persists per-source pagination state
type CheckpointStore interface {
	Get(ctx context.Context, source string) (*models.ImportCheckpoint, error)
	Acquire(ctx context.Context, source string) (*models.ImportCheckpoint, bool, error)
	SavePage(ctx context.Context, source, cursor, lastExternalContactID string) error
	Finalize(ctx context.Context, source string) error
}

// Result aggregates the counters of one completed import run.
// Counters live only in memory: a run that fails hard reports nothing,
// the durable state is the checkpoint.
type Result struct {
	Imported        int       `json:"imported"`
	UpdatedExisting int       `json:"updatedExisting"`
	Skipped         int       `json:"skipped"`
	Errors          int       `json:"errors"`
	ImportTime      time.Time `json:"importTime"`
}

// Status describes the current import state for the operator UI
type Status struct {
	LastImportDate   *time.Time `json:"lastImportDate"`
	ImportInProgress bool       `json:"importInProgress"`
	LastCursor       *string    `json:"lastCursor"`
}

// Importer drives the import pipeline for one upstream source.
// A run is strictly sequential: one page at a time, records in page
// order, so the persisted cursor is always a valid resumption point.
type Importer struct {
	source      string
	upstream    ContactSource
	contacts    ContactStore
	checkpoints CheckpointStore
	policy      *UpsertPolicy
	pageSize    int
}

// New creates a new importer
func New(source string, upstream ContactSource, contacts ContactStore, checkpoints CheckpointStore, pageSize int) (*Importer, error) {
	if source == "" {
		return nil, fmt.Errorf("source cannot be empty")
	}
	if upstream == nil {
		return nil, fmt.Errorf("upstream source cannot be nil")
	}
	if contacts == nil {
		return nil, fmt.Errorf("contact store cannot be nil")
	}
	if checkpoints == nil {
		return nil, fmt.Errorf("checkpoint store cannot be nil")
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	return &Importer{
		source:      source,
		upstream:    upstream,
		contacts:    contacts,
		checkpoints: checkpoints,
		policy:      NewUpsertPolicy(contacts),
		pageSize:    pageSize,
	}, nil
}

// Status reports the current import state for the source
func (im *Importer) Status(ctx context.Context) (*Status, error) {
	cp, err := im.checkpoints.Get(ctx, im.source)
	if err != nil {
		return nil, err
	}

	watermark, err := im.contacts.ImportWatermark(ctx)
	if err != nil {
		return nil, err
	}

	status := &Status{LastImportDate: watermark}
	if cp != nil {
		status.ImportInProgress = cp.IsInProgress
		status.LastCursor = cp.LastCursor
	}

	return status, nil
}

// Run executes one import run to completion. startTime is stamped on
// every contact the run touches; the caller captures it once so all
// records of the run share one watermark value.
//
// The run is not retried here on upstream failure. The checkpoint is
// released with its cursor intact and the decision to retry or resume
// belongs to the operator.
func (im *Importer) Run(ctx context.Context, mode Mode, startTime time.Time) (*Result, error) {
	if !im.upstream.Configured() {
		return nil, apperrors.NewConfigurationError("upstream API token is not configured")
	}

	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"source": im.source,
		"mode":   string(mode),
	})

	cp, acquired, err := im.checkpoints.Acquire(ctx, im.source)
	if err != nil {
		return nil, apperrors.NewDatabaseError("acquire import checkpoint", err)
	}
	if !acquired && mode != ModeResume {
		return nil, apperrors.NewImportInProgressError(cp)
	}

	cursor := ""
	if mode == ModeResume && cp != nil && cp.LastCursor != nil {
		cursor = *cp.LastCursor
	}

	var updatedSince *time.Time
	if mode == ModeIncremental {
		updatedSince, err = im.contacts.ImportWatermark(ctx)
		if err != nil {
			im.finalize(ctx, logger)
			return nil, apperrors.NewDatabaseError("read import watermark", err)
		}
	}

	logger.WithField("resumeCursor", cursor).Info("Import run starting")

	result := &Result{ImportTime: startTime}

	for {
		page, err := im.upstream.FetchPage(ctx, intercom.PageRequest{
			PerPage:       im.pageSize,
			StartingAfter: cursor,
			UpdatedSince:  updatedSince,
		})
		if err != nil {
			// Release the checkpoint but keep the cursor: the operator
			// can resume from the last fully processed page.
			im.finalize(ctx, logger)
			return nil, apperrors.NewUpstreamFetchError(err)
		}

		if len(page.Contacts) == 0 {
			break
		}

		lastExternalID := ""
		for _, record := range page.Contacts {
			outcome, err := im.policy.Apply(ctx, record, startTime)
			if err != nil {
				// One bad record never blocks the rest of the run.
				result.Errors++
				logger.WithFields(map[string]interface{}{
					"externalId": record.ID,
					"error":      err.Error(),
				}).Warn("Failed to apply contact record")
				continue
			}

			switch outcome {
			case OutcomeImported:
				result.Imported++
			case OutcomeUpdated:
				result.UpdatedExisting++
			case OutcomeSkipped:
				result.Skipped++
			}
			lastExternalID = record.ID
		}

		if page.NextCursor == "" {
			break
		}

		cursor = page.NextCursor
		if err := im.checkpoints.SavePage(ctx, im.source, cursor, lastExternalID); err != nil {
			im.finalize(ctx, logger)
			return nil, apperrors.NewDatabaseError("save import checkpoint", err)
		}

		logger.WithFields(map[string]interface{}{
			"cursor":    cursor,
			"processed": result.Imported + result.UpdatedExisting + result.Skipped + result.Errors,
		}).Debug("Import page checkpointed")
	}

	if err := im.checkpoints.Finalize(ctx, im.source); err != nil {
		return nil, apperrors.NewDatabaseError("finalize import checkpoint", err)
	}

	logger.WithFields(map[string]interface{}{
		"imported":        result.Imported,
		"updatedExisting": result.UpdatedExisting,
		"skipped":         result.Skipped,
		"errors":          result.Errors,
	}).Info("Import run completed")

	return result, nil
}

// finalize releases the checkpoint after a failed run. The failure
// being reported to the caller takes precedence over finalize errors,
// which are only logged.
func (im *Importer) finalize(ctx context.Context, logger *logging.Logger) {
	if err := im.checkpoints.Finalize(ctx, im.source); err != nil {
		logger.WithError(err).Error("Failed to release import checkpoint")
	}
}
