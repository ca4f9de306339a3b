package email

import (
	"context"

	"github.com/copperline/courier/internal/domain"
)

// Message is a fully-resolved outbound email, ready for an adapter.
// By the time a message reaches an adapter, all addresses have been
// validated, the from address is resolved, and exactly one of
// HTML/Text/both has been settled by the orchestrator.
type Message struct {
	To          []string            // Recipient email addresses
	From        string              // Sender email address
	Subject     string              // Email subject
	TextBody    string              // Plain text body
	HTMLBody    string              // HTML body (optional)
	Cc          []string            // CC addresses (optional)
	Bcc         []string            // BCC addresses (optional)
	ReplyTo     string              // Reply-To address (optional)
	Tags        []domain.Tag        // Vendor-visible key/value tags (optional)
	Attachments []domain.Attachment // File attachments (optional)
	Headers     map[string]string   // Custom headers (optional)
}

// SendResult is returned by an adapter after attempting delivery.
// Adapters report ordinary provider-side rejection through Success=false
// rather than an error, so bulk siblings are never aborted by one
// element's failure.
type SendResult struct {
	Success    bool
	ProviderID string // vendor-assigned message id, set on success
	Error      string // provider or transport error, set on failure
}

// Adapter is the send capability implemented once per vendor.
// Implementations wrap a single vendor's transport (Resend, SendGrid,
// SMTP relay, ...). All variants are interchangeable through this
// interface; a registry maps provider name to variant instance.
type Adapter interface {
	// Name returns the provider identifier this adapter serves.
	Name() domain.Provider

	// SendEmail dispatches one message. Transport-level faults are
	// returned as an error; the caller converts them to a failure
	// result so the contract "always an outcome per request" holds.
	SendEmail(ctx context.Context, msg *Message) (*SendResult, error)

	// SendBulkEmails dispatches messages in fixed-size batches,
	// concurrently within a batch. Output order matches input order;
	// one element's failure never aborts its siblings.
	SendBulkEmails(ctx context.Context, msgs []*Message) []*SendResult
}

// failure wraps an error into a SendResult for callers that must always
// produce an outcome value.
func failure(err error) *SendResult {
	return &SendResult{Success: false, Error: err.Error()}
}
