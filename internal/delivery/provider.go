// Package delivery wraps the external email delivery provider used for
// mailing audiences and broadcasts.
package delivery

import "context"

// BroadcastInput describes one outbound broadcast send
type BroadcastInput struct {
	AudienceID  string
	FromEmail   string
	Subject     string
	HTMLContent string
}

// Provider is the surface the services need from the email delivery
// provider. AudienceID values are opaque provider identifiers.
type Provider interface {
	// CreateAudience creates a named audience and returns its provider id
	CreateAudience(ctx context.Context, name string) (string, error)
	// AddContacts enrolls a batch of emails into an audience
	AddContacts(ctx context.Context, audienceID string, emails []string) error
	// SendBroadcast sends one broadcast to an audience and returns the
	// provider-side message id
	SendBroadcast(ctx context.Context, input BroadcastInput) (string, error)
}
