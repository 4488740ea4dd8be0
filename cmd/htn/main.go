package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/app/controllers"
	"github.com/hiddentreasuresnetwork/platform/app/repository"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/bootstrap"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/cache"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/middleware"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/router"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/session"
)

func main() {
	env.SetupEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatalf("[Server] startup failed: %v", err)
	}
	defer services.Close()

	app := NewApplication(services)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("[Server] shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatalf("[Server] listen: %v", err)
	}
}

func NewApplication(s *bootstrap.Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Hidden Treasures Network",
		// webhook payloads and export requests are small
		BodyLimit: 4 * 1024 * 1024,
	})

	deps := router.Deps{
		Export:       controllers.NewExportController(s.Exporter, s.Archive),
		Report:       controllers.NewReportController(s.Reports),
		Email:        controllers.NewEmailController(s.Mailer, nil),
		Metrics:      s.Metrics,
		AdminKeyHash: middleware.AdminKeyHash(),
		ProxySecret:  middleware.ProxySecret(),
		OpenAPIFile:  env.GetEnv("OPENAPI_FILE", "docs/openapi.yml"),
		RateLimit:    env.GetInt("API_RATE_LIMIT", 120),
	}

	sessionCfg := session.LoadConfig()
	var pinger controllers.Pinger
	if s.Cache != nil {
		pinger = s.Cache
		sessionCfg.Storage = cache.NewSessionStorage(s.CacheConfig)
		deps.LimiterStorage = cache.NewLimiterStorage(s.CacheConfig)
		deps.AdminCache = controllers.NewAdminCacheController(repository.NewCacheRepository(s.Cache.Client()))
	}
	deps.Health = controllers.NewHealthController(s.DB, pinger)
	if s.Activity != nil {
		deps.Activity = s.Activity
	}

	if s.Factory != nil {
		repos := s.Factory.GetRepositories()
		sessions := session.New(sessionCfg)
		deps.Sessions = sessions
		deps.Auth = controllers.NewAuthController(repos.User, sessions)
		deps.Email = controllers.NewEmailController(s.Mailer, repos.User)
		deps.Contact = controllers.NewContactController(s.Contact)
		deps.Schools = controllers.NewSchoolController(s.Schools, repos.User)
		deps.Settings = controllers.NewSettingController(repos.Setting)
		deps.Billing = controllers.NewBillingController(s.Billing)
		deps.Schedule = controllers.NewScheduledReportController(s.Schedule)
		deps.Messages = controllers.NewMessageController(s.Messaging)
		deps.Insights = controllers.NewInsightsController(s.AI, s.Factory.InsightsSource(), repos)
	}

	router.InstallRouter(app, deps)
	return app
}
