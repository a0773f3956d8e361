package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/contact-sync/internal/config"
	"github.com/mailgun/mailgun-go/v5"
	"github.com/mailgun/mailgun-go/v5/mtypes"
)

// MailgunProvider implements Provider on top of the Mailgun API.
// Audiences map to Mailgun mailing lists; the audience id is the list
// address.
type MailgunProvider struct {
	mg     *mailgun.Client
	domain string
}

// NewMailgunProvider creates a new Mailgun-backed delivery provider
func NewMailgunProvider(cfg *config.MailgunConfig) (*MailgunProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailgun API key is not configured")
	}
	if cfg.Domain == "" {
		return nil, fmt.Errorf("mailgun domain is not configured")
	}

	return &MailgunProvider{
		mg:     mailgun.NewMailgun(cfg.APIKey),
		domain: cfg.Domain,
	}, nil
}

// CreateAudience creates a mailing list named after the audience and
// returns its address as the audience id
func (p *MailgunProvider) CreateAudience(ctx context.Context, name string) (string, error) {
	address := fmt.Sprintf("%s@%s", slugify(name), p.domain)

	list, err := p.mg.CreateMailingList(ctx, mtypes.MailingList{
		Address:     address,
		Name:        name,
		AccessLevel: mtypes.AccessLevelReadOnly,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create mailing list: %w", err)
	}

	return list.Address, nil
}

// AddContacts enrolls a batch of emails as subscribed members of the
// audience's mailing list
func (p *MailgunProvider) AddContacts(ctx context.Context, audienceID string, emails []string) error {
	if len(emails) == 0 {
		return nil
	}

	subscribed := true
	members := make([]interface{}, 0, len(emails))
	for _, email := range emails {
		members = append(members, mtypes.Member{
			Address:    email,
			Subscribed: &subscribed,
		})
	}

	upsert := true
	if err := p.mg.CreateMemberList(ctx, &upsert, audienceID, members); err != nil {
		return fmt.Errorf("failed to add members to mailing list: %w", err)
	}

	return nil
}

// SendBroadcast sends one message addressed to the audience's mailing
// list and returns the provider message id
func (p *MailgunProvider) SendBroadcast(ctx context.Context, input BroadcastInput) (string, error) {
	message := mailgun.NewMessage(p.domain, input.FromEmail, input.Subject, "", input.AudienceID)
	message.SetHTML(input.HTMLContent)

	resp, err := p.mg.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("failed to send broadcast: %w", err)
	}

	return resp.ID, nil
}

// slugify converts an audience name into a mailing list local part
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteByte('-')
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "audience"
	}
	return slug
}
