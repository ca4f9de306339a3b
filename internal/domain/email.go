package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider identifies which adapter handled a send.
type Provider string

const (
	ProviderResend   Provider = "resend"
	ProviderSendGrid Provider = "sendgrid"
	ProviderBrevo    Provider = "brevo"
	ProviderSMTP     Provider = "smtp"
	ProviderMock     Provider = "mock"
)

// ContentType disambiguates the stored body.
type ContentType string

const (
	ContentTypeHTML  ContentType = "html"
	ContentTypeText  ContentType = "text"
	ContentTypeMixed ContentType = "mixed" // both html and text were supplied
)

// EmailStatus is the current lifecycle state of a logged email.
type EmailStatus string

const (
	StatusPending         EmailStatus = "pending"
	StatusSent            EmailStatus = "sent"
	StatusDelivered       EmailStatus = "delivered"
	StatusOpened          EmailStatus = "opened"
	StatusClicked         EmailStatus = "clicked"
	StatusBounced         EmailStatus = "bounced"
	StatusComplained      EmailStatus = "complained"
	StatusFailed          EmailStatus = "failed"
	StatusDeliveryDelayed EmailStatus = "delivery_delayed"
)

// ValidStatus reports whether s is a known email status.
func ValidStatus(s EmailStatus) bool {
	switch s {
	case StatusPending, StatusSent, StatusDelivered, StatusOpened, StatusClicked,
		StatusBounced, StatusComplained, StatusFailed, StatusDeliveryDelayed:
		return true
	}
	return false
}

// EmailLogEntry is the durable record of one send attempt and its lifecycle.
// Multi-recipient address fields are stored comma-joined; all reads and
// writes of those fields go through the email package's join/split helpers.
type EmailLogEntry struct {
	ID uuid.UUID `json:"id"`

	// ProviderID is the vendor-assigned message id. Populated once,
	// immediately after a successful send, and never reassigned. It is
	// the reconciliation key for delivery webhooks.
	ProviderID *string `json:"providerId,omitempty"`

	FromAddress    string  `json:"fromAddress"`
	ToAddress      string  `json:"toAddress"`
	CcAddress      *string `json:"ccAddress,omitempty"`
	BccAddress     *string `json:"bccAddress,omitempty"`
	ReplyToAddress *string `json:"replyToAddress,omitempty"`

	Subject     string      `json:"subject"`
	Content     string      `json:"content"`
	ContentType ContentType `json:"contentType"`
	Tags        *string     `json:"tags,omitempty"` // JSON-serialized key/value list

	Status   EmailStatus `json:"status"`
	Provider Provider    `json:"provider"`

	UserID       *uuid.UUID `json:"userId,omitempty"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`

	SentAt       *time.Time `json:"sentAt,omitempty"`
	DeliveredAt  *time.Time `json:"deliveredAt,omitempty"`
	OpenedAt     *time.Time `json:"openedAt,omitempty"`
	ClickedAt    *time.Time `json:"clickedAt,omitempty"`
	BouncedAt    *time.Time `json:"bouncedAt,omitempty"`
	ComplainedAt *time.Time `json:"complainedAt,omitempty"`
	FailedAt     *time.Time `json:"failedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tag is a single key/value pair attached to an outgoing email.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
}

// SendRequest is a request to send one email. Address fields accept
// multiple recipients; content requires at least one of HTML/Text.
type SendRequest struct {
	To          []string     `json:"to"`
	From        string       `json:"from,omitempty"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html,omitempty"`
	Text        string       `json:"text,omitempty"`
	Cc          []string     `json:"cc,omitempty"`
	Bcc         []string     `json:"bcc,omitempty"`
	ReplyTo     string       `json:"replyTo,omitempty"`
	Tags        []Tag        `json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Provider    Provider     `json:"provider,omitempty"`
}

// SendReceipt is returned by a successful single send.
type SendReceipt struct {
	EmailID    uuid.UUID `json:"emailId"`
	ProviderID string    `json:"providerId,omitempty"`
}

// BulkItemOutcome is the per-element result of a bulk send. Output order
// matches input order.
type BulkItemOutcome struct {
	Index      int       `json:"index"`
	Success    bool      `json:"success"`
	EmailID    uuid.UUID `json:"emailId"`
	ProviderID string    `json:"providerId,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// BulkSendResult aggregates a bulk send. A subset failing does not fail
// the whole call.
type BulkSendResult struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Results    []BulkItemOutcome `json:"results"`
	Logs       []*EmailLogEntry  `json:"emailLogs"`
}

// EmailStats holds aggregate engagement metrics derived from a snapshot
// of log entries. Rates are percentages; division by zero yields 0.
type EmailStats struct {
	Total      int     `json:"total"`
	Sent       int     `json:"sent"` // entries currently sent or delivered
	Delivered  int     `json:"delivered"`
	Opened     int     `json:"opened"`
	Clicked    int     `json:"clicked"`
	Bounced    int     `json:"bounced"`
	Complained int     `json:"complained"`
	Failed     int     `json:"failed"`
	OpenRate   float64 `json:"openRate"`
	ClickRate  float64 `json:"clickRate"`
	BounceRate float64 `json:"bounceRate"`
}

// EmailLogQuery filters log listings. Nil fields are unconstrained.
type EmailLogQuery struct {
	UserID   *uuid.UUID
	Status   *EmailStatus
	Provider *Provider
	Limit    int32
	Offset   int32
}

// StatusUpdate describes an idempotent status transition applied by the
// webhook reconciler. Applying the same update twice produces the same
// entry state (only updatedAt moves).
type StatusUpdate struct {
	Status EmailStatus

	// OccurredAt is the event's own timestamp and becomes the value of
	// the status's timestamp column. Reapplying the same event writes
	// the same value.
	OccurredAt time.Time

	ErrorMessage *string
}

// EmailLogStore is the persistence boundary for email log entries.
// The store is expected to provide read-committed semantics; an update
// by id must be atomic at the row level.
type EmailLogStore interface {
	// CreateEmailLog persists a new entry. The entry's ID, CreatedAt and
	// UpdatedAt must already be populated by the caller.
	CreateEmailLog(ctx context.Context, entry *EmailLogEntry) error

	// GetEmailLog returns the entry with the given id.
	GetEmailLog(ctx context.Context, id uuid.UUID) (*EmailLogEntry, error)

	// GetEmailLogByProviderID returns the entry whose vendor message id
	// matches, or ENOTFOUND.
	GetEmailLogByProviderID(ctx context.Context, providerID string) (*EmailLogEntry, error)

	// ListEmailLogs returns entries matching the query, newest first.
	ListEmailLogs(ctx context.Context, q EmailLogQuery) ([]*EmailLogEntry, error)

	// UpdateEmailLogStatus applies a status transition to the entry with
	// the given id (keyed by id, not provider id) and returns the
	// updated entry.
	UpdateEmailLogStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) (*EmailLogEntry, error)
}

// StatusTimestamp reports which entry timestamp a status transition
// populates. Returns false for statuses without a dedicated column
// (pending, delivery_delayed).
func StatusTimestamp(s EmailStatus) (field string, ok bool) {
	switch s {
	case StatusSent:
		return "sent_at", true
	case StatusDelivered:
		return "delivered_at", true
	case StatusOpened:
		return "opened_at", true
	case StatusClicked:
		return "clicked_at", true
	case StatusBounced:
		return "bounced_at", true
	case StatusComplained:
		return "complained_at", true
	case StatusFailed:
		return "failed_at", true
	}
	return "", false
}
