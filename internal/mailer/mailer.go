// Package mailer dispatches digests and manages subscriptions through
// the Resend email API.
package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/jwulan/newsdigest/internal/digest"
)

// Mailer wraps the Resend client with the audience this service
// broadcasts to.
type Mailer struct {
	client     *resend.Client
	audienceID string
	from       string
}

// New creates a mailer. Both the API key and the audience ID come from
// process configuration; an empty API key means dispatch is not
// configured and New returns an error so callers can degrade explicitly.
func New(apiKey, audienceID, from string) (*Mailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Resend API key")
	}
	if audienceID == "" {
		return nil, fmt.Errorf("missing Resend audience ID")
	}
	return &Mailer{
		client:     resend.NewClient(apiKey),
		audienceID: audienceID,
		from:       from,
	}, nil
}

// SendDigest creates a broadcast for the configured audience and sends
// it immediately.
func (m *Mailer) SendDigest(ctx context.Context, subject string, d *digest.Digest) error {
	created, err := m.client.Broadcasts.CreateWithContext(ctx, &resend.CreateBroadcastRequest{
		AudienceId: m.audienceID,
		From:       m.from,
		Subject:    subject,
		Html:       d.HTML,
		Text:       d.Text,
	})
	if err != nil {
		return fmt.Errorf("creating broadcast: %w", err)
	}

	if _, err := m.client.Broadcasts.SendWithContext(ctx, &resend.SendBroadcastRequest{
		BroadcastId: created.Id,
	}); err != nil {
		return fmt.Errorf("sending broadcast %s: %w", created.Id, err)
	}

	log.Printf("Digest broadcast %s sent", created.Id)
	return nil
}

// Subscribe registers an email address with the configured audience. An
// already-registered contact is not an error.
func (m *Mailer) Subscribe(ctx context.Context, email string) error {
	_, err := m.client.Contacts.CreateWithContext(ctx, &resend.CreateContactRequest{
		Email:      email,
		AudienceId: m.audienceID,
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("creating contact: %w", err)
	}
	return nil
}
