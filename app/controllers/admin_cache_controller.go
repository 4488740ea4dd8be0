package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/app/repository"
)

const (
	defaultCachePattern = "subscription:status:*"
	defaultCacheLimit   = 200
	maxCacheLimit       = 1000
)

// AdminCacheController lets admins inspect and flush cached subscription
// status entries.
type AdminCacheController struct {
	cacheRepo repository.CacheRepository
}

// NewAdminCacheController creates the controller. cacheRepo is nil when
// redis is not configured.
func NewAdminCacheController(cacheRepo repository.CacheRepository) *AdminCacheController {
	return &AdminCacheController{cacheRepo: cacheRepo}
}

type cacheEntryView struct {
	Key        string `json:"key"`
	TTLSeconds int64  `json:"ttlSeconds"`
	Type       string `json:"type"`
}

type cacheDeleteRequest struct {
	Keys    []string `json:"keys"`
	Pattern string   `json:"pattern"`
}

// HandleList lists cache keys matching ?pattern (default subscription status keys).
// GET /api/admin/cache?pattern=&limit=
func (acc *AdminCacheController) HandleList(c *fiber.Ctx) error {
	if acc.cacheRepo == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Cache not configured")
	}
	limit := c.QueryInt("limit", defaultCacheLimit)
	if limit <= 0 || limit > maxCacheLimit {
		limit = defaultCacheLimit
	}

	entries, err := acc.cacheRepo.FindKeys(c.UserContext(), c.Query("pattern", defaultCachePattern), limit)
	if err != nil {
		return upstreamError(c, "Cache", err, "Failed to read cache keys")
	}

	items := make([]cacheEntryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, cacheEntryView{
			Key:        e.Key,
			TTLSeconds: int64(e.TTL.Seconds()),
			Type:       cacheKeyType(e.Key),
		})
	}
	return c.JSON(fiber.Map{"entries": items, "total": len(items)})
}

// HandleDelete removes the listed keys, or every key matching pattern.
// DELETE /api/admin/cache
func (acc *AdminCacheController) HandleDelete(c *fiber.Ctx) error {
	if acc.cacheRepo == nil {
		return errorJSON(c, fiber.StatusServiceUnavailable, "Cache not configured")
	}
	var req cacheDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	keys := req.Keys
	if len(keys) == 0 {
		pattern := strings.TrimSpace(req.Pattern)
		if pattern == "" || pattern == "*" {
			return errorJSON(c, fiber.StatusBadRequest, "Provide keys or a narrower pattern")
		}
		entries, err := acc.cacheRepo.FindKeys(ctx, pattern, maxCacheLimit)
		if err != nil {
			return upstreamError(c, "Cache", err, "Failed to read cache keys")
		}
		for _, e := range entries {
			keys = append(keys, e.Key)
		}
	}

	deleted, err := acc.cacheRepo.DeleteKeys(ctx, keys...)
	if err != nil {
		return upstreamError(c, "Cache", err, "Failed to delete cache keys")
	}
	log.Infof("[Cache] admin flushed %d of %d keys", deleted, len(keys))
	return c.JSON(fiber.Map{"success": true, "deleted": deleted})
}

func cacheKeyType(key string) string {
	switch {
	case strings.HasPrefix(key, "subscription:status:"):
		return "subscription_status"
	case strings.HasPrefix(key, "ratelimit:"):
		return "rate_limit"
	}
	return "unknown"
}
