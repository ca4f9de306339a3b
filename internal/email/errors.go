package email

import "github.com/copperline/courier/internal/domain"

var (
	// ErrNotImplemented is returned by stub adapters that register a
	// provider name before its transport is ready.
	ErrNotImplemented = domain.Errorf(domain.ENOTIMPL, "email.send", "email provider not implemented")

	// ErrMissingRecipient is returned when a message reaches an adapter
	// with no recipients. The orchestrator validates this earlier; the
	// adapter check guards direct callers.
	ErrMissingRecipient = domain.Invalid("email.send", "at least one recipient is required")
)
