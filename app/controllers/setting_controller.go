package controllers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/app/models"
)

// SettingStore reads and writes operator-maintained settings.
type SettingStore interface {
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value, valueType string) error
}

// editableSettings are the figures the reports read that operators keep
// current by hand. All are non-negative integers.
var editableSettings = []string{
	models.SettingTotalLivesImpacted,
	models.SettingFlightPlanGoal,
}

type SettingController struct {
	store SettingStore
}

func NewSettingController(store SettingStore) *SettingController {
	return &SettingController{store: store}
}

type settingRequest struct {
	Value string `json:"value"`
}

// GET /api/admin/settings
func (sc *SettingController) HandleList(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out := make(fiber.Map, len(editableSettings))
	for _, key := range editableSettings {
		v, err := sc.store.GetValue(ctx, key)
		if err != nil {
			return upstreamError(c, "Settings", err, "Failed to load settings")
		}
		out[key] = v
	}
	return c.JSON(fiber.Map{"settings": out})
}

// PUT /api/admin/settings/:key
func (sc *SettingController) HandleUpdate(c *fiber.Ctx) error {
	key := c.Params("key")
	if !isEditableSetting(key) {
		return errorJSON(c, fiber.StatusNotFound, "Unknown setting")
	}
	var req settingRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	value := strings.TrimSpace(req.Value)
	if n, err := strconv.ParseInt(value, 10, 64); err != nil || n < 0 {
		return errorJSON(c, fiber.StatusBadRequest, "Value must be a non-negative integer")
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := sc.store.SetValue(ctx, key, value, "integer"); err != nil {
		return upstreamError(c, "Settings", err, "Failed to save setting")
	}
	log.Infof("[Settings] %s set to %s", key, value)
	return c.JSON(fiber.Map{"key": key, "value": value})
}

func isEditableSetting(key string) bool {
	for _, k := range editableSettings {
		if k == key {
			return true
		}
	}
	return false
}
