package service

import (
	"context"
	"time"

	apperrors "github.com/contact-sync/internal/errors"
	"github.com/contact-sync/internal/logging"
)

// Provider webhook event types that suppress a contact
const (
	EventUnsubscribed = "email.unsubscribed"
	EventBounced      = "email.bounced"
)

// Suppressor marks contacts as unsubscribed
type Suppressor interface {
	MarkUnsubscribed(ctx context.Context, email string, at time.Time) error
}

// StatsInvalidator drops cached statistics after contact state changes
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

// WebhookEvent is the provider notification payload
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Email string `json:"email"`
	} `json:"data"`
}

// SuppressionService applies unsubscribe and bounce events to contacts
type SuppressionService struct {
	contacts Suppressor
	stats    StatsInvalidator
}

// NewSuppressionService creates a new suppression service
func NewSuppressionService(contacts Suppressor, stats StatsInvalidator) *SuppressionService {
	return &SuppressionService{contacts: contacts, stats: stats}
}

// HandleEvent processes a single webhook event. Event types other than
// unsubscribe and bounce are acknowledged without action, and events for
// unknown emails are ignored so provider retries stay quiet.
func (s *SuppressionService) HandleEvent(ctx context.Context, event WebhookEvent) error {
	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"eventType": event.Type,
		"email":     event.Data.Email,
	})

	switch event.Type {
	case EventUnsubscribed, EventBounced:
	default:
		logger.Debug("Ignoring unhandled webhook event type")
		return nil
	}

	if event.Data.Email == "" {
		return apperrors.NewInvalidInputError("webhook event is missing an email")
	}

	if err := s.contacts.MarkUnsubscribed(ctx, event.Data.Email, time.Now().UTC()); err != nil {
		return apperrors.NewDatabaseError("mark contact unsubscribed", err)
	}

	logger.Info("Contact suppressed from webhook event")
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	return nil
}
