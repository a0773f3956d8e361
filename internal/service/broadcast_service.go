package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/contact-sync/internal/delivery"
	apperrors "github.com/contact-sync/internal/errors"
	"github.com/contact-sync/internal/logging"
	"github.com/contact-sync/internal/models"
)

// BroadcastStore persists broadcast records
type BroadcastStore interface {
	Create(ctx context.Context, broadcast *models.Broadcast) error
	SetProviderMessageID(ctx context.Context, id, providerMessageID string) error
}

// BroadcastRequest describes a broadcast to send
type BroadcastRequest struct {
	Name        string `json:"name"`
	AudienceID  string `json:"audienceId"`
	FromEmail   string `json:"fromEmail"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
}

// BroadcastResult reports a sent broadcast
type BroadcastResult struct {
	BroadcastID       string `json:"broadcastId"`
	ProviderMessageID string `json:"providerMessageId"`
}

// BroadcastService records and sends email broadcasts through the provider
type BroadcastService struct {
	broadcasts  BroadcastStore
	provider    delivery.Provider
	defaultFrom string
}

// NewBroadcastService creates a new broadcast service
func NewBroadcastService(broadcasts BroadcastStore, provider delivery.Provider, defaultFrom string) *BroadcastService {
	return &BroadcastService{broadcasts: broadcasts, provider: provider, defaultFrom: defaultFrom}
}

// Send records the broadcast, then hands it to the provider. The row is
// written before the send so a provider failure still leaves an audit trail.
func (s *BroadcastService) Send(ctx context.Context, req BroadcastRequest) (*BroadcastResult, error) {
	if s.provider == nil {
		return nil, apperrors.NewConfigurationError("email delivery provider is not configured")
	}
	if req.AudienceID == "" {
		return nil, apperrors.NewInvalidInputError("audienceId is required")
	}
	if req.Subject == "" {
		return nil, apperrors.NewInvalidInputError("subject is required")
	}
	if req.HTMLContent == "" {
		return nil, apperrors.NewInvalidInputError("htmlContent is required")
	}

	from := req.FromEmail
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return nil, apperrors.NewInvalidInputError("fromEmail is required")
	}

	name := req.Name
	if name == "" {
		name = req.Subject
	}

	broadcast := &models.Broadcast{
		ID:      uuid.New().String(),
		Name:    name,
		Subject: req.Subject,
		SentAt:  time.Now().UTC(),
	}
	if err := s.broadcasts.Create(ctx, broadcast); err != nil {
		return nil, apperrors.NewDatabaseError("create broadcast", err)
	}

	messageID, err := s.provider.SendBroadcast(ctx, delivery.BroadcastInput{
		AudienceID:  req.AudienceID,
		FromEmail:   from,
		Subject:     req.Subject,
		HTMLContent: req.HTMLContent,
	})
	if err != nil {
		return nil, apperrors.NewProviderError("send broadcast", err)
	}

	if err := s.broadcasts.SetProviderMessageID(ctx, broadcast.ID, messageID); err != nil {
		// The send already happened, so surface the row update failure in
		// logs rather than failing the request.
		logging.FromContext(ctx).WithError(err).WithField("broadcastId", broadcast.ID).
			Error("Failed to record provider message ID")
	}

	return &BroadcastResult{BroadcastID: broadcast.ID, ProviderMessageID: messageID}, nil
}
