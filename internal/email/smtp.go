package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/copperline/courier/internal/domain"
)

// SMTPConfig holds SMTP connection parameters.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string // optional - some servers allow unauthenticated relay
	Password string // optional
}

// SMTPAdapter implements Adapter over a generic SMTP relay using go-mail.
// Useful for self-hosted relays and local development (Mailpit/Mailhog).
// SMTP has no delivery webhooks, so entries sent this way stay at
// status sent unless the relay feeds events back some other way.
type SMTPAdapter struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPAdapter creates an SMTP email adapter.
func NewSMTPAdapter(config SMTPConfig, logger *slog.Logger) *SMTPAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPAdapter{config: config, logger: logger}
}

// Name returns the provider identifier.
func (a *SMTPAdapter) Name() domain.Provider {
	return domain.ProviderSMTP
}

// SendEmail delivers one message over SMTP.
func (a *SMTPAdapter) SendEmail(ctx context.Context, msg *Message) (*SendResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrMissingRecipient
	}

	m := mail.NewMsg()

	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return nil, fmt.Errorf("invalid bcc address: %w", err)
		}
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}

	m.Subject(msg.Subject)

	// Prefer multipart html+text, falling back to whichever is present
	if msg.HTMLBody != "" && msg.TextBody != "" {
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	} else if msg.HTMLBody != "" {
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	} else {
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}

	for key, value := range msg.Headers {
		m.SetGenHeader(mail.Header(key), value)
	}

	for _, att := range msg.Attachments {
		if err := m.AttachReader(att.Filename, bytes.NewReader(att.Content),
			mail.WithFileContentType(mail.ContentType(att.ContentType))); err != nil {
			return nil, fmt.Errorf("failed to attach file %s: %w", att.Filename, err)
		}
	}

	client, err := mail.NewClient(a.config.Host, a.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		a.logger.Error("smtp: failed to send email", "error", err, "host", a.config.Host)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	// SMTP does not return a vendor message id, so mint a stable one for
	// the log entry's reconciliation column.
	providerID := "smtp-" + uuid.New().String()
	return &SendResult{Success: true, ProviderID: providerID}, nil
}

// SendBulkEmails dispatches messages in bounded concurrent batches.
func (a *SMTPAdapter) SendBulkEmails(ctx context.Context, msgs []*Message) []*SendResult {
	return sendInBatches(ctx, msgs, a.SendEmail)
}

// clientOptions returns go-mail client options based on configuration.
func (a *SMTPAdapter) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(a.config.Port),
		mail.WithTimeout(30 * time.Second),
	}

	// TLS mode based on port (go-mail auto-detects, but be explicit)
	switch a.config.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if a.config.Username != "" && a.config.Password != "" {
		opts = append(opts,
			mail.WithUsername(a.config.Username),
			mail.WithPassword(a.config.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	return opts
}
