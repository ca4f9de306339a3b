package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/email"
	"github.com/copperline/courier/internal/telemetry"
)

// Reconciler applies asynchronous provider delivery events to the email
// log. Providers deliver webhooks at-least-once and possibly out of
// order; the reconciler is safe under both because a status update is a
// pure function of (event type, event timestamp), never an increment.
type Reconciler struct {
	store    domain.EmailLogStore
	verifier email.SignatureVerifier // nil when no webhook secret is configured
	logger   *slog.Logger
}

// NewReconciler creates a webhook reconciler. Pass a nil verifier to
// accept unsigned traffic (development/staging leniency; every unsigned
// delivery is logged).
func NewReconciler(store domain.EmailLogStore, verifier email.SignatureVerifier, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, verifier: verifier, logger: logger}
}

// ReconcileResult reports what a webhook delivery did.
type ReconcileResult struct {
	// Matched is false when the message id references an email not
	// tracked by this system. That is an acknowledged no-op, not an
	// error: the provider must not be told to retry.
	Matched bool

	EmailID   string
	MessageID string
	Status    domain.EmailStatus
	Message   string
}

// webhookEvent is the provider event envelope. The message id may
// arrive under data.id or data.email_id depending on vendor; the
// ordered fallback lives in messageID().
type webhookEvent struct {
	Type      string      `json:"type"`
	CreatedAt string      `json:"created_at"`
	Data      webhookData `json:"data"`
}

type webhookData struct {
	ID      string `json:"id"`
	EmailID string `json:"email_id"`

	Bounce *struct {
		Type string `json:"type"`
	} `json:"bounce,omitempty"`

	Complaint *struct {
		Type string `json:"type"`
	} `json:"complaint,omitempty"`
}

// messageID extracts the vendor message id: data.id preferred,
// data.email_id as fallback.
func (e *webhookEvent) messageID() string {
	if e.Data.ID != "" {
		return e.Data.ID
	}
	return e.Data.EmailID
}

// occurredAt returns the event's own timestamp when it parses, so that
// replayed deliveries write identical values. Falls back to now.
func (e *webhookEvent) occurredAt() time.Time {
	if e.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, e.CreatedAt); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}

// Handle verifies, parses and applies one webhook delivery.
// Verification and parse failures abort before any mutation; an
// untracked message id returns success without mutation.
func (r *Reconciler) Handle(ctx context.Context, payload []byte, headers http.Header) (*ReconcileResult, error) {
	const op = "webhook.handle"
	start := time.Now()

	if r.verifier != nil {
		if err := r.verifier.Verify(payload, headers); err != nil {
			telemetry.RecordWebhookFailed("invalid_signature")
			return nil, err
		}
	} else {
		r.logger.Warn("webhook accepted without signature verification; no webhook secret configured")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		telemetry.RecordWebhookFailed("bad_payload")
		return nil, domain.WrapError(err, domain.EINVALID, op, "Invalid webhook payload")
	}

	messageID := event.messageID()
	if messageID == "" {
		telemetry.RecordWebhookFailed("missing_message_id")
		return nil, ErrMissingMessageID
	}

	telemetry.RecordWebhookReceived(event.Type)

	entry, err := r.store.GetEmailLogByProviderID(ctx, messageID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			// The webhook may reference an email sent by another
			// integration on the same provider account. Acknowledge so
			// the provider stops retrying.
			r.logger.Info("webhook for untracked message acknowledged",
				"message_id", messageID,
				"event_type", event.Type,
			)
			return &ReconcileResult{
				Matched:   false,
				MessageID: messageID,
				Message:   "no matching email log found",
			}, nil
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to look up email log")
	}

	status := statusForEvent(event.Type)

	update := domain.StatusUpdate{
		Status:       status,
		OccurredAt:   event.occurredAt(),
		ErrorMessage: errorMessageForEvent(status, &event),
	}

	// Update keyed by entry id, not provider id, to stay unambiguous
	// even if a provider id were ever duplicated.
	updated, err := r.store.UpdateEmailLogStatus(ctx, entry.ID, update)
	if err != nil {
		telemetry.RecordWebhookFailed("store_update")
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to update email log")
	}

	telemetry.RecordWebhookProcessed(event.Type)
	telemetry.ObserveWebhookLatency(event.Type, time.Since(start).Seconds())
	r.logger.Info("webhook reconciled",
		"email_id", updated.ID,
		"message_id", messageID,
		"event_type", event.Type,
		"status", status,
	)

	return &ReconcileResult{
		Matched:   true,
		EmailID:   updated.ID.String(),
		MessageID: messageID,
		Status:    status,
		Message:   "email status updated",
	}, nil
}

// statusForEvent maps the vendor event taxonomy to internal status.
// Unrecognized types map to pending rather than being rejected:
// providers add event types over time and older deployments must not
// hard-fail on them.
func statusForEvent(eventType string) domain.EmailStatus {
	switch strings.TrimPrefix(eventType, "email.") {
	case "sent":
		return domain.StatusSent
	case "delivered":
		return domain.StatusDelivered
	case "delivery_delayed":
		return domain.StatusDeliveryDelayed
	case "opened":
		return domain.StatusOpened
	case "clicked":
		return domain.StatusClicked
	case "bounced":
		return domain.StatusBounced
	case "complained":
		return domain.StatusComplained
	case "failed":
		return domain.StatusFailed
	default:
		return domain.StatusPending
	}
}

// errorMessageForEvent builds the stored error description for negative
// terminal events, carrying the vendor-supplied subtype when present.
func errorMessageForEvent(status domain.EmailStatus, event *webhookEvent) *string {
	var msg string

	switch status {
	case domain.StatusBounced:
		msg = "email bounced"
		if event.Data.Bounce != nil && event.Data.Bounce.Type != "" {
			msg = fmt.Sprintf("email bounced (%s)", event.Data.Bounce.Type)
		}
	case domain.StatusComplained:
		msg = "recipient marked email as spam"
		if event.Data.Complaint != nil && event.Data.Complaint.Type != "" {
			msg = fmt.Sprintf("recipient complaint (%s)", event.Data.Complaint.Type)
		}
	case domain.StatusFailed:
		msg = "email delivery failed"
	default:
		return nil
	}

	return &msg
}
