package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/copperline/courier/internal/domain"
)

// ResendAdapter implements Adapter using the Resend API.
type ResendAdapter struct {
	client *resend.Client
}

// NewResendAdapter creates a Resend email adapter.
func NewResendAdapter(apiKey string) *ResendAdapter {
	return &ResendAdapter{
		client: resend.NewClient(apiKey),
	}
}

// Name returns the provider identifier.
func (a *ResendAdapter) Name() domain.Provider {
	return domain.ProviderResend
}

// SendEmail dispatches one message through the Resend API.
func (a *ResendAdapter) SendEmail(ctx context.Context, msg *Message) (*SendResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrMissingRecipient
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		ReplyTo: msg.ReplyTo,
	}

	for _, tag := range msg.Tags {
		params.Tags = append(params.Tags, resend.Tag{Name: tag.Name, Value: tag.Value})
	}

	for _, att := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    att.Filename,
			Content:     att.Content,
			ContentType: att.ContentType,
		})
	}

	sent, err := a.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("resend: failed to send email: %w", err)
	}

	return &SendResult{Success: true, ProviderID: sent.Id}, nil
}

// SendBulkEmails dispatches messages in bounded concurrent batches.
func (a *ResendAdapter) SendBulkEmails(ctx context.Context, msgs []*Message) []*SendResult {
	return sendInBatches(ctx, msgs, a.SendEmail)
}
