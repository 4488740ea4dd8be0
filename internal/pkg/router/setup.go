package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hiddentreasuresnetwork/platform/app/controllers"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/middleware"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps carries the constructed controllers. A nil controller means its
// backing store is not configured and its routes answer 503.
type Deps struct {
	Auth       *controllers.AuthController
	Contact    *controllers.ContactController
	Schools    *controllers.SchoolController
	Settings   *controllers.SettingController
	Billing    *controllers.BillingController
	Export     *controllers.ExportController
	Report     *controllers.ReportController
	Email      *controllers.EmailController
	Schedule   *controllers.ScheduledReportController
	Messages   *controllers.MessageController
	Insights   *controllers.InsightsController
	AdminCache *controllers.AdminCacheController
	Health     *controllers.HealthController

	Metrics *metrics.Metrics
	// Sessions resolves cookie logins; nil leaves only signed proxy headers.
	Sessions middleware.SessionReader
	// ProxySecret verifies X-User-ID headers; empty ignores them.
	ProxySecret string
	// Activity records identified callers; nil disables tracking.
	Activity middleware.ActivityRecorder
	// LimiterStorage backs the /api rate limiter; nil keeps counters in memory.
	LimiterStorage fiber.Storage
	AdminKeyHash   string
	// OpenAPIFile is served under /docs/api/v1 when the file exists.
	OpenAPIFile string
	RateLimit   int
}

func InstallRouter(app *fiber.App, deps Deps) {
	// HttpRouter installs the global middleware the API routes rely on.
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

func unavailable(what string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": what + " not configured"})
	}
}
