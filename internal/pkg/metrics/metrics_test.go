package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	m := New()

	m.ObserveWebhook("invoice.paid", "processed", time.Now())
	m.ObserveWebhook("invoice.paid", "processed", time.Now())
	m.Checkout("student", "ok")
	m.Export("students", "csv")
	m.AI("insights", "fallback")
	m.Enrollment("classroom_full")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.WebhookEvents.WithLabelValues("invoice.paid", "processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutSessions.WithLabelValues("student", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("students", "csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AIRequests.WithLabelValues("insights", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Enrollments.WithLabelValues("classroom_full")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveWebhook("x", "y", time.Now())
		m.Checkout("student", "ok")
		m.Export("students", "csv")
		m.Report("executive", "html")
		m.Email("dev", "logged")
		m.AI("insights", "ai")
		m.Delivery("sent")
		m.Enrollment("enrolled")
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.Email("sendgrid", "sent")

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `htn_mail_sent_total{provider="sendgrid",result="sent"} 1`))
}
