package models

import "time"

// Broadcast records one email broadcast sent through the delivery
// provider. ProviderMessageID is the provider-side identifier of the
// outbound message, filled in after a successful send.
type Broadcast struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Subject           string    `json:"subject" db:"subject"`
	ProviderMessageID *string   `json:"providerMessageId,omitempty" db:"provider_message_id"`
	SentAt            time.Time `json:"sentAt" db:"sent_at"`
}
