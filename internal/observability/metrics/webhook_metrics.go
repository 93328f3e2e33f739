package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	WebhookOutcomeProcessed = "processed"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeRejected  = "rejected"
	WebhookOutcomeFailed    = "failed"
)

// WebhookMetrics captures reconciliation pipeline health signals.
type WebhookMetrics struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	webhookMetricsOnce sync.Once
	webhookMetrics     *WebhookMetrics
)

// Webhook returns the singleton webhook metrics registry.
func Webhook() *WebhookMetrics {
	webhookMetricsOnce.Do(func() {
		webhookMetrics = newWebhookMetrics(prometheus.DefaultRegisterer)
	})
	return webhookMetrics
}

// ResetWebhookMetricsForTest resets the webhook metrics singleton for tests.
func ResetWebhookMetricsForTest() {
	webhookMetricsOnce = sync.Once{}
	webhookMetrics = nil
}

func newWebhookMetrics(registerer prometheus.Registerer) *WebhookMetrics {
	if registerer == nil {
		registerer = prometheus.NewRegistry()
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "convergio_webhook_events_total",
		Help: "Webhook deliveries by provider and outcome.",
	}, []string{"provider", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "convergio_webhook_duration_seconds",
		Help:    "Webhook reconciliation latency.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})

	registerer.MustRegister(events, duration)

	return &WebhookMetrics{events: events, duration: duration}
}

func (m *WebhookMetrics) ObserveEvent(provider, outcome string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(provider, outcome).Inc()
}

func (m *WebhookMetrics) ObserveDuration(provider string, seconds float64) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(provider).Observe(seconds)
}
