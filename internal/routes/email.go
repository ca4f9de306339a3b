package routes

import (
	"github.com/copperline/courier/internal/middleware"
	"github.com/copperline/courier/internal/router"
)

// RegisterEmailRoutes registers the email API routes.
func RegisterEmailRoutes(r *router.Router, deps EmailDeps) {
	h := deps.Handler

	r.Post("/email/send", h.Send, deps.RequireAuth)
	r.Post("/email/send-bulk", h.SendBulk, deps.RequireAuth)
	r.Get("/email/logs", h.Logs, deps.RequireAuth)
	r.Get("/email/stats", h.Stats, deps.RequireAuth)

	// System sends are reachable only from the internal network; they
	// carry no session and therefore no auth middleware.
	r.Post("/email/send-system", h.SendSystem)
}

// RegisterWebhookRoutes registers all webhook routes.
// These routes handle incoming webhooks from external services.
//
// Note: Webhook routes do NOT have authentication middleware.
// The handler verifies the request signature itself.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/email/webhook", deps.EmailHandler,
		middleware.MaxBodySize(middleware.WebhookMaxBodySize))
}

// RegisterOpsRoutes registers health and metrics endpoints.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", deps.Health)
	if deps.Metrics != nil {
		r.Handle("GET", "/metrics", deps.Metrics)
	}
}
