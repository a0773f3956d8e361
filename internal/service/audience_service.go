// Package service implements the application services behind the HTTP API.
package service

import (
	"context"

	"github.com/contact-sync/internal/delivery"
	apperrors "github.com/contact-sync/internal/errors"
	"github.com/contact-sync/internal/logging"
)

// audienceBatchSize is the number of contacts enrolled per provider call
const audienceBatchSize = 1000

// SubscriberLister lists emails eligible for audience enrollment
type SubscriberLister interface {
	ListSubscribedEmails(ctx context.Context) ([]string, error)
}

// AudienceResult reports the outcome of an audience creation
type AudienceResult struct {
	AudienceID       string `json:"audienceId"`
	AudienceName     string `json:"audienceName"`
	SubscribersAdded int    `json:"subscribersAdded"`
}

// AudienceService creates provider audiences and enrolls all currently
// subscribed contacts into them
type AudienceService struct {
	contacts SubscriberLister
	provider delivery.Provider
}

// NewAudienceService creates a new audience service
func NewAudienceService(contacts SubscriberLister, provider delivery.Provider) *AudienceService {
	return &AudienceService{contacts: contacts, provider: provider}
}

// Create creates an audience and enrolls subscribed contacts in batches.
// A failed batch is logged and skipped: partial enrollment is preferred
// over failing the whole audience.
func (s *AudienceService) Create(ctx context.Context, name string) (*AudienceResult, error) {
	if s.provider == nil {
		return nil, apperrors.NewConfigurationError("email delivery provider is not configured")
	}
	if name == "" {
		return nil, apperrors.NewInvalidInputError("audience name is required")
	}

	logger := logging.FromContext(ctx).WithField("audienceName", name)

	audienceID, err := s.provider.CreateAudience(ctx, name)
	if err != nil {
		return nil, apperrors.NewProviderError("create audience", err)
	}

	emails, err := s.contacts.ListSubscribedEmails(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list subscribed contacts", err)
	}

	logger.WithField("subscribers", len(emails)).Info("Enrolling subscribers into audience")

	added := 0
	for start := 0; start < len(emails); start += audienceBatchSize {
		end := start + audienceBatchSize
		if end > len(emails) {
			end = len(emails)
		}

		batch := emails[start:end]
		if err := s.provider.AddContacts(ctx, audienceID, batch); err != nil {
			logger.WithFields(map[string]interface{}{
				"batchStart": start,
				"batchSize":  len(batch),
				"error":      err.Error(),
			}).Error("Failed to enroll audience batch")
			continue
		}
		added += len(batch)
	}

	return &AudienceResult{
		AudienceID:       audienceID,
		AudienceName:     name,
		SubscribersAdded: added,
	}, nil
}
