package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

// AdminKeyHash returns the bcrypt hash admin keys are checked against.
func AdminKeyHash() string {
	return strings.TrimSpace(env.GetEnv("ADMIN_API_KEY_HASH", ""))
}

// AdminKey authenticates admin requests carrying the shared API key. An
// unset hash disables the admin surface with 503.
func AdminKey(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Admin API is not configured"})
		}

		apiKey := extractAPIKeyFromHeader(c)
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API key"})
		}
		if !validAdminKey(hash, apiKey) {
			log.Warnf("[Auth] rejected admin key from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API key"})
		}

		markAdmin(c)
		return c.Next()
	}
}

// DetectAdminKey marks callers presenting a valid admin key without
// rejecting anyone else. Handlers branch on usercontext.IsAdmin.
func DetectAdminKey(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey := extractAPIKeyFromHeader(c); hash != "" && apiKey != "" {
			if validAdminKey(hash, apiKey) {
				markAdmin(c)
			} else {
				log.Warnf("[Auth] ignored invalid admin key from %s", c.IP())
			}
		}
		return c.Next()
	}
}

func validAdminKey(hash, apiKey string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil
}

func markAdmin(c *fiber.Ctx) {
	uc := usercontext.GetUserContext(c)
	uc.IsAdmin = true
	usercontext.Set(c, uc)
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
