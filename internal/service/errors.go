package service

import (
	"github.com/copperline/courier/internal/domain"
)

// Validation errors - use domain.EINVALID
var (
	ErrMissingRecipients = domain.Invalid("", "At least one recipient address is required")
	ErrMissingFrom       = domain.Invalid("", "No from address provided and no default configured")
	ErrEmptyBulkRequest  = domain.Invalid("", "Bulk send requires at least one email")
)

// Webhook errors
var (
	ErrMissingMessageID = domain.Invalid("webhook.parse", "Webhook payload carries no message id")
)
