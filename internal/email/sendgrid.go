package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/copperline/courier/internal/domain"
)

// SendGridAdapter implements Adapter using the SendGrid v3 Mail Send API.
type SendGridAdapter struct {
	client *sendgrid.Client
}

// NewSendGridAdapter creates a SendGrid email adapter.
func NewSendGridAdapter(apiKey string) *SendGridAdapter {
	return &SendGridAdapter{
		client: sendgrid.NewSendClient(apiKey),
	}
}

// Name returns the provider identifier.
func (a *SendGridAdapter) Name() domain.Provider {
	return domain.ProviderSendGrid
}

// SendEmail dispatches one message through the SendGrid API.
func (a *SendGridAdapter) SendEmail(ctx context.Context, msg *Message) (*SendResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrMissingRecipient
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail("", msg.From))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	for _, addr := range msg.To {
		p.AddTos(sgmail.NewEmail("", addr))
	}
	for _, addr := range msg.Cc {
		p.AddCCs(sgmail.NewEmail("", addr))
	}
	for _, addr := range msg.Bcc {
		p.AddBCCs(sgmail.NewEmail("", addr))
	}
	m.AddPersonalizations(p)

	// SendGrid requires text/plain before text/html
	if msg.TextBody != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}

	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}

	for _, tag := range msg.Tags {
		m.SetCustomArg(tag.Name, tag.Value)
	}

	for _, att := range msg.Attachments {
		attachment := sgmail.NewAttachment()
		attachment.SetFilename(att.Filename)
		attachment.SetType(att.ContentType)
		attachment.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		m.AddAttachment(attachment)
	}

	resp, err := a.client.SendWithContext(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: failed to send email: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &SendResult{
			Success: false,
			Error:   fmt.Sprintf("sendgrid API error (status %d): %s", resp.StatusCode, resp.Body),
		}, nil
	}

	// SendGrid returns the message id in a response header, not the body.
	var providerID string
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		providerID = ids[0]
	}

	return &SendResult{Success: true, ProviderID: providerID}, nil
}

// SendBulkEmails dispatches messages in bounded concurrent batches.
func (a *SendGridAdapter) SendBulkEmails(ctx context.Context, msgs []*Message) []*SendResult {
	return sendInBatches(ctx, msgs, a.SendEmail)
}
