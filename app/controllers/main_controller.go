package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
)

// Pinger is satisfied by the redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports dependency health. Both dependencies are
// optional; nil means not configured.
type HealthController struct {
	db    *gorm.DB
	cache Pinger
}

func NewHealthController(db *gorm.DB, cache Pinger) *HealthController {
	return &HealthController{db: db, cache: cache}
}

// GET /healthz
func (hc *HealthController) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{
		"database": hc.checkDatabase(ctx),
		"cache":    hc.checkCache(ctx),
	}
	status := fiber.StatusOK
	for _, v := range checks {
		if v == "down" {
			status = fiber.StatusServiceUnavailable
		}
	}
	return c.Status(status).JSON(fiber.Map{
		"status": healthLabel(status),
		"env":    env.GetEnv("APP_ENV", "prod"),
		"checks": checks,
	})
}

func (hc *HealthController) checkDatabase(ctx context.Context) string {
	if hc.db == nil {
		return "not_configured"
	}
	sqlDB, err := hc.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return "down"
	}
	return "up"
}

func (hc *HealthController) checkCache(ctx context.Context) string {
	if hc.cache == nil {
		return "not_configured"
	}
	if err := hc.cache.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

func healthLabel(status int) string {
	if status == fiber.StatusOK {
		return "ok"
	}
	return "degraded"
}
