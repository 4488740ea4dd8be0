package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "htn"

// Metrics owns a private registry so tests can build as many as they like.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	WebhookEvents    *prometheus.CounterVec
	WebhookDuration  *prometheus.HistogramVec
	CheckoutSessions *prometheus.CounterVec
	Exports          *prometheus.CounterVec
	Reports          *prometheus.CounterVec
	Emails           *prometheus.CounterVec
	AIRequests       *prometheus.CounterVec
	ScheduledRuns    *prometheus.CounterVec
	Enrollments      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "webhook_events_total",
			Help:      "Payment provider webhook events by type and result.",
		}, []string{"event_type", "result"}),
		WebhookDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "webhook_duration_seconds",
			Help:      "Webhook processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		CheckoutSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "checkout_sessions_total",
			Help:      "Checkout session attempts by role and result.",
		}, []string{"role", "result"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "Dataset exports by type and format.",
		}, []string{"type", "format"}),
		Reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "generated_total",
			Help:      "Generated reports by type and format.",
		}, []string{"type", "format"}),
		Emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mail",
			Name:      "sent_total",
			Help:      "Emails by provider and result.",
		}, []string{"provider", "result"}),
		AIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "AI feature calls by feature and source (ai or fallback).",
		}, []string{"feature", "source"}),
		ScheduledRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "deliveries_total",
			Help:      "Scheduled report deliveries by status.",
		}, []string{"status"}),
		Enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schools",
			Name:      "enrollments_total",
			Help:      "Classroom enrollment attempts by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.WebhookEvents,
		m.WebhookDuration,
		m.CheckoutSessions,
		m.Exports,
		m.Reports,
		m.Emails,
		m.AIRequests,
		m.ScheduledRuns,
		m.Enrollments,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) ObserveWebhook(eventType, result string, started time.Time) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(eventType, result).Inc()
	m.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Checkout(role, result string) {
	if m == nil {
		return
	}
	m.CheckoutSessions.WithLabelValues(role, result).Inc()
}

func (m *Metrics) Export(dataset, format string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(dataset, format).Inc()
}

func (m *Metrics) Report(reportType, format string) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(reportType, format).Inc()
}

func (m *Metrics) Email(provider, result string) {
	if m == nil {
		return
	}
	m.Emails.WithLabelValues(provider, result).Inc()
}

func (m *Metrics) AI(feature, source string) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(feature, source).Inc()
}

func (m *Metrics) Delivery(status string) {
	if m == nil {
		return
	}
	m.ScheduledRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) Enrollment(result string) {
	if m == nil {
		return
	}
	m.Enrollments.WithLabelValues(result).Inc()
}
