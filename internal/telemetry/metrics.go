package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EmailMetrics holds Prometheus metrics for email delivery observability.
type EmailMetrics struct {
	// Send pipeline
	EmailSent   *prometheus.CounterVec
	EmailFailed *prometheus.CounterVec

	// Webhook reconciliation
	WebhookReceived  *prometheus.CounterVec
	WebhookProcessed *prometheus.CounterVec
	WebhookFailed    *prometheus.CounterVec
	WebhookLatency   *prometheus.HistogramVec
}

// Email is the process-wide metrics instance, initialized once in main
// via InitMetrics. Record helpers are nil-safe so library code and
// tests need no metrics setup.
var Email *EmailMetrics

// InitMetrics registers the email metrics with the default registry.
func InitMetrics() *EmailMetrics {
	Email = &EmailMetrics{
		EmailSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_emails_sent_total",
			Help: "Emails accepted by a provider, by provider name",
		}, []string{"provider"}),

		EmailFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_emails_failed_total",
			Help: "Emails rejected by a provider or transport, by provider name",
		}, []string{"provider"}),

		WebhookReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_webhooks_received_total",
			Help: "Delivery webhooks received, by event type",
		}, []string{"event_type"}),

		WebhookProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_webhooks_processed_total",
			Help: "Delivery webhooks applied to the email log, by event type",
		}, []string{"event_type"}),

		WebhookFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "courier_webhooks_failed_total",
			Help: "Delivery webhooks rejected or failed, by reason",
		}, []string{"reason"}),

		WebhookLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courier_webhook_duration_seconds",
			Help:    "Webhook handling duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"event_type"}),
	}

	return Email
}

// RecordEmailSent increments the sent counter for a provider.
func RecordEmailSent(provider string) {
	if Email != nil {
		Email.EmailSent.WithLabelValues(provider).Inc()
	}
}

// RecordEmailFailed increments the failed counter for a provider.
func RecordEmailFailed(provider string) {
	if Email != nil {
		Email.EmailFailed.WithLabelValues(provider).Inc()
	}
}

// RecordWebhookReceived increments the received counter for an event type.
func RecordWebhookReceived(eventType string) {
	if Email != nil {
		Email.WebhookReceived.WithLabelValues(eventType).Inc()
	}
}

// RecordWebhookProcessed increments the processed counter for an event type.
func RecordWebhookProcessed(eventType string) {
	if Email != nil {
		Email.WebhookProcessed.WithLabelValues(eventType).Inc()
	}
}

// RecordWebhookFailed increments the failure counter for a reason.
func RecordWebhookFailed(reason string) {
	if Email != nil {
		Email.WebhookFailed.WithLabelValues(reason).Inc()
	}
}

// ObserveWebhookLatency records one webhook handling duration in seconds.
func ObserveWebhookLatency(eventType string, seconds float64) {
	if Email != nil {
		Email.WebhookLatency.WithLabelValues(eventType).Observe(seconds)
	}
}
