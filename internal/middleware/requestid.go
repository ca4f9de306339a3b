package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the inbound/outbound request id header.
	RequestIDHeader = "X-Request-ID"

	// RequestIDContextKey stores the request id in context.
	RequestIDContextKey contextKey = "request_id"

	// maxRequestIDLength bounds forwarded ids so an abusive header
	// cannot bloat every log line of the request.
	maxRequestIDLength = 128
)

// RequestID tags each request with an id, honoring one forwarded by
// the gateway so a send can be traced across services. Absent or
// oversized ids are replaced with a fresh UUID. The id is echoed in
// the response headers and stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request id from the context, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}
