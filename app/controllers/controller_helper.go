package controllers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/app/models"
)

// requestTimeout bounds the outbound calls a single handler makes.
const requestTimeout = 15 * time.Second

// MemberLookup resolves the account behind a signed-in caller's uid.
type MemberLookup interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// upstreamError answers 500 with the upstream message, or fallback when it
// is empty.
func upstreamError(c *fiber.Ctx, component string, err error, fallback string) error {
	log.Errorf("[%s] %v", component, err)
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = fallback
	}
	return errorJSON(c, fiber.StatusInternalServerError, msg)
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// uintParam parses a positive numeric route parameter.
func uintParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && v
}

// firstHeaderValue returns the first non-empty header among keys.
func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}
