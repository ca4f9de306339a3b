package email

import (
	"context"

	"github.com/copperline/courier/internal/domain"
)

// BrevoAdapter is a stub registration for the Brevo provider.
// It reserves the provider name ahead of the transport being wired;
// every call fails deterministically with a not-implemented error so
// misdirected sends are logged as failures rather than lost.
type BrevoAdapter struct {
	apiKey string
}

// NewBrevoAdapter creates the Brevo stub adapter. The key is held so
// wiring the real transport later is a drop-in change.
func NewBrevoAdapter(apiKey string) *BrevoAdapter {
	return &BrevoAdapter{apiKey: apiKey}
}

// Name returns the provider identifier.
func (a *BrevoAdapter) Name() domain.Provider {
	return domain.ProviderBrevo
}

// SendEmail always fails with a not-implemented error.
func (a *BrevoAdapter) SendEmail(ctx context.Context, msg *Message) (*SendResult, error) {
	return nil, ErrNotImplemented
}

// SendBulkEmails fails every element with a not-implemented outcome.
func (a *BrevoAdapter) SendBulkEmails(ctx context.Context, msgs []*Message) []*SendResult {
	return sendInBatches(ctx, msgs, a.SendEmail)
}
