package email

import (
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/copperline/courier/internal/domain"
)

// SignatureVerifier authenticates inbound webhook payloads.
// Implementations are black boxes to the reconciler: verify the raw
// payload against the request headers, error on tampering.
type SignatureVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// SvixVerifier verifies svix-signed webhooks (svix-id, svix-timestamp,
// svix-signature headers), the scheme Resend and other vendors use for
// delivery events.
type SvixVerifier struct {
	wh *svix.Webhook
}

// NewSvixVerifier creates a verifier for the given signing secret.
func NewSvixVerifier(secret string) (*SvixVerifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, domain.WrapError(err, domain.ECONFIG, "webhook.verifier", "invalid webhook signing secret")
	}
	return &SvixVerifier{wh: wh}, nil
}

// Verify checks the payload signature against the request headers.
func (v *SvixVerifier) Verify(payload []byte, headers http.Header) error {
	if err := v.wh.Verify(payload, headers); err != nil {
		return domain.Unauthorized("webhook.verify", "invalid webhook signature")
	}
	return nil
}
