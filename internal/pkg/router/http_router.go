package router

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Deps
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Use(recover.New(), requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	// Identity runs first so every handler can read the caller id.
	app.Use(middleware.Identity(middleware.IdentityConfig{
		Sessions:    h.deps.Sessions,
		ProxySecret: h.deps.ProxySecret,
	}))
	if h.deps.Activity != nil {
		app.Use(middleware.TrackActivity(h.deps.Activity))
	}

	if h.deps.Health != nil {
		app.Get("/healthz", h.deps.Health.HandleHealth)
	}
	if h.deps.Metrics != nil {
		app.Get("/metrics", h.deps.Metrics.Handler())
	}

	if h.deps.OpenAPIFile != "" {
		if _, err := os.Stat(h.deps.OpenAPIFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/docs/api/",
				FilePath: h.deps.OpenAPIFile,
				Path:     "v1",
				Title:    "Hidden Treasures Network API",
			}))
		} else {
			log.Warnf("[Router] openapi file %s not found, docs disabled", h.deps.OpenAPIFile)
		}
	}
}

func NewHttpRouter(deps Deps) *HttpRouter {
	return &HttpRouter{deps: deps}
}
