package cache

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	redisstorage "github.com/gofiber/storage/redis"
)

// Cached values live in DB 0; fiber storages get their own databases.
const (
	limiterDatabase = 1
	sessionDatabase = 2
)

// NewLimiterStorage returns a fiber.Storage for the rate limiter on the
// same server. The storage pings on construction and panics when the
// server is unreachable, so only call it after a successful Ping.
func NewLimiterStorage(cfg Config) fiber.Storage {
	return newStorage(cfg, limiterDatabase)
}

// NewSessionStorage returns the fiber.Storage that holds login sessions.
// The same Ping caveat as NewLimiterStorage applies.
func NewSessionStorage(cfg Config) fiber.Storage {
	return newStorage(cfg, sessionDatabase)
}

func newStorage(cfg Config, database int) fiber.Storage {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host:     cfg.Host,
		Port:     port,
		Password: cfg.Password,
		Database: database,
		Reset:    false,
	})
}
