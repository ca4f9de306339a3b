// Package webhook receives asynchronous delivery events from email
// providers. Routes here carry no authentication middleware; the
// handler verifies the payload signature itself.
package webhook

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/handler"
	"github.com/copperline/courier/internal/middleware"
	"github.com/copperline/courier/internal/service"
)

// EmailHandler handles provider delivery webhooks.
type EmailHandler struct {
	reconciler *service.Reconciler
}

// NewEmailHandler creates a new webhook handler around the reconciler.
func NewEmailHandler(reconciler *service.Reconciler) *EmailHandler {
	return &EmailHandler{reconciler: reconciler}
}

// webhookResponse acknowledges a delivery. The provider only needs
// success and message to decide whether to retry; the id and status
// fields are filled when the event matched a tracked email.
type webhookResponse struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	EmailID   string             `json:"emailId,omitempty"`
	MessageID string             `json:"messageId,omitempty"`
	Status    domain.EmailStatus `json:"status,omitempty"`
}

// HandleWebhook processes one incoming delivery event.
//
// Response contract: 401 tells the provider the payload failed
// signature verification; 400 that it is malformed; anything the
// reconciler resolved - including an untracked message id - returns
// 200 so the provider stops retrying.
func (h *EmailHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EINVALID, "webhook.read", "Error reading request body"))
		return
	}

	result, err := h.reconciler.Handle(r.Context(), payload, r.Header)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	logger.Debug("webhook acknowledged",
		slog.String("message_id", result.MessageID),
		slog.Bool("matched", result.Matched),
	)

	handler.JSON(w, http.StatusOK, webhookResponse{
		Success:   true,
		Message:   result.Message,
		EmailID:   result.EmailID,
		MessageID: result.MessageID,
		Status:    result.Status,
	})
}
