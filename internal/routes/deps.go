package routes

import (
	"net/http"

	"github.com/copperline/courier/internal/handler/api"
	"github.com/copperline/courier/internal/router"
)

// EmailDeps contains dependencies for the email API routes
type EmailDeps struct {
	Handler *api.EmailHandler

	// RequireAuth guards the caller-facing endpoints. The system-send
	// endpoint is exempt: it serves trusted internal callers before any
	// session exists.
	RequireAuth router.Middleware
}

// WebhookDeps contains dependencies for webhook routes
type WebhookDeps struct {
	EmailHandler http.HandlerFunc
}

// OpsDeps contains dependencies for operational routes
type OpsDeps struct {
	Health  http.HandlerFunc
	Metrics http.Handler
}
