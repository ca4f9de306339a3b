// Package api exposes the email subsystem over JSON HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/copperline/courier/internal/domain"
	"github.com/copperline/courier/internal/handler"
	"github.com/copperline/courier/internal/service"
)

// EmailHandler serves the send, log and stats endpoints.
type EmailHandler struct {
	emails *service.EmailService
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(emails *service.EmailService) *EmailHandler {
	return &EmailHandler{emails: emails}
}

// sendResponse is the success envelope for single sends.
type sendResponse struct {
	Success    bool   `json:"success"`
	EmailID    string `json:"emailId"`
	ProviderID string `json:"providerId,omitempty"`
	Message    string `json:"message"`
}

// Send handles POST /email/send on behalf of the authenticated caller.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EINVALID, "email.send", "Invalid request body"))
		return
	}

	receipt, err := h.emails.Send(r.Context(), &req)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, sendResponse{
		Success:    true,
		EmailID:    receipt.EmailID.String(),
		ProviderID: receipt.ProviderID,
		Message:    "Email sent successfully",
	})
}

// SendSystem handles POST /email/send-system. No principal is attached:
// this endpoint serves account-lifecycle mail that predates any session.
func (h *EmailHandler) SendSystem(w http.ResponseWriter, r *http.Request) {
	var req domain.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EINVALID, "email.send", "Invalid request body"))
		return
	}

	receipt, err := h.emails.SendSystem(r.Context(), &req)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, sendResponse{
		Success:    true,
		EmailID:    receipt.EmailID.String(),
		ProviderID: receipt.ProviderID,
		Message:    "Email sent successfully",
	})
}

// bulkSendRequest is the request body for POST /email/send-bulk.
type bulkSendRequest struct {
	Emails   []*domain.SendRequest `json:"emails"`
	Provider domain.Provider       `json:"provider,omitempty"`
}

type bulkSendResponse struct {
	Success bool `json:"success"`
	*domain.BulkSendResult
}

// SendBulk handles POST /email/send-bulk. The call succeeds as long as
// the batch was processed; per-element failures live in the results.
func (h *EmailHandler) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.ErrorResponse(w, r, domain.WrapError(err, domain.EINVALID, "email.sendbulk", "Invalid request body"))
		return
	}

	result, err := h.emails.SendBulk(r.Context(), req.Emails, req.Provider)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, bulkSendResponse{Success: true, BulkSendResult: result})
}

type logsResponse struct {
	Success   bool                    `json:"success"`
	EmailLogs []*domain.EmailLogEntry `json:"emailLogs"`
	Count     int                     `json:"count"`
	Query     logQueryEcho            `json:"query"`
}

// logQueryEcho mirrors the parsed filters back to the caller so paging
// clients can see which scope the listing was computed over.
type logQueryEcho struct {
	UserID   *uuid.UUID          `json:"userId,omitempty"`
	Status   *domain.EmailStatus `json:"status,omitempty"`
	Provider *domain.Provider    `json:"provider,omitempty"`
	Limit    int32               `json:"limit"`
	Offset   int32               `json:"offset"`
}

// Logs handles GET /email/logs with optional userId, status, provider,
// limit and offset query parameters.
func (h *EmailHandler) Logs(w http.ResponseWriter, r *http.Request) {
	q, err := logQueryFromRequest(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	q = service.NormalizeLogQuery(q)

	entries, err := h.emails.Logs(r.Context(), q)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if entries == nil {
		entries = []*domain.EmailLogEntry{}
	}
	handler.JSON(w, http.StatusOK, logsResponse{
		Success:   true,
		EmailLogs: entries,
		Count:     len(entries),
		Query: logQueryEcho{
			UserID:   q.UserID,
			Status:   q.Status,
			Provider: q.Provider,
			Limit:    q.Limit,
			Offset:   q.Offset,
		},
	})
}

type statsResponse struct {
	Success bool               `json:"success"`
	Stats   *domain.EmailStats `json:"stats"`
	UserID  *uuid.UUID         `json:"userId"`
}

// Stats handles GET /email/stats with optional userId and provider
// query parameters.
func (h *EmailHandler) Stats(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("email.stats", "userId must be a valid UUID"))
			return
		}
		userID = &id
	}

	var provider *domain.Provider
	if raw := r.URL.Query().Get("provider"); raw != "" {
		p := domain.Provider(raw)
		provider = &p
	}

	stats, err := h.emails.Stats(r.Context(), userID, provider)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, statsResponse{Success: true, Stats: stats, UserID: userID})
}

// logQueryFromRequest parses the listing filters from query parameters.
func logQueryFromRequest(r *http.Request) (domain.EmailLogQuery, error) {
	var q domain.EmailLogQuery
	params := r.URL.Query()

	if raw := params.Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, domain.Invalid("emaillog.list", "userId must be a valid UUID")
		}
		q.UserID = &id
	}

	if raw := params.Get("status"); raw != "" {
		status := domain.EmailStatus(raw)
		if !domain.ValidStatus(status) {
			return q, domain.Invalid("emaillog.list", "unknown status: "+raw)
		}
		q.Status = &status
	}

	if raw := params.Get("provider"); raw != "" {
		provider := domain.Provider(raw)
		q.Provider = &provider
	}

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || limit < 0 {
			return q, domain.Invalid("emaillog.list", "limit must be a non-negative integer")
		}
		q.Limit = int32(limit)
	}

	if raw := params.Get("offset"); raw != "" {
		offset, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || offset < 0 {
			return q, domain.Invalid("emaillog.list", "offset must be a non-negative integer")
		}
		q.Offset = int32(offset)
	}

	return q, nil
}
