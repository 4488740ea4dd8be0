package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/schedule"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

// ScheduledReportController manages recurring report deliveries. All
// routes are admin only.
type ScheduledReportController struct {
	svc *schedule.Service
}

func NewScheduledReportController(svc *schedule.Service) *ScheduledReportController {
	return &ScheduledReportController{svc: svc}
}

// GET /api/reports/scheduled
func (sc *ScheduledReportController) HandleList(c *fiber.Ctx) error {
	reports, err := sc.svc.List(c.UserContext())
	if err != nil {
		return upstreamError(c, "Schedule", err, "Failed to list scheduled reports")
	}
	return c.JSON(fiber.Map{"reports": reports})
}

// GET /api/reports/scheduled/:id
func (sc *ScheduledReportController) HandleGet(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid report id")
	}
	r, err := sc.svc.Get(c.UserContext(), id)
	if err != nil {
		return sc.scheduleError(c, err)
	}
	return c.JSON(r)
}

// POST /api/reports/scheduled
func (sc *ScheduledReportController) HandleCreate(c *fiber.Ctx) error {
	var in schedule.Input
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	createdBy := usercontext.GetUserID(c)
	if createdBy == "" {
		createdBy = "admin"
	}

	r, err := sc.svc.Create(c.UserContext(), in, createdBy)
	if err != nil {
		return sc.scheduleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// PUT /api/reports/scheduled/:id
func (sc *ScheduledReportController) HandleUpdate(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid report id")
	}
	var in schedule.Input
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	r, err := sc.svc.Update(c.UserContext(), id, in)
	if err != nil {
		return sc.scheduleError(c, err)
	}
	return c.JSON(r)
}

// DELETE /api/reports/scheduled/:id
func (sc *ScheduledReportController) HandleDelete(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid report id")
	}
	if err := sc.svc.Delete(c.UserContext(), id); err != nil {
		return sc.scheduleError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// GET /api/reports/scheduled/:id/deliveries?limit=
func (sc *ScheduledReportController) HandleDeliveries(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid report id")
	}
	deliveries, err := sc.svc.Deliveries(c.UserContext(), id, c.QueryInt("limit"))
	if err != nil {
		return sc.scheduleError(c, err)
	}
	return c.JSON(fiber.Map{"deliveries": deliveries})
}

// HandleRunNow delivers one report immediately.
// POST /api/reports/scheduled/:id/run
func (sc *ScheduledReportController) HandleRunNow(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid report id")
	}
	delivery, err := sc.svc.RunNow(c.UserContext(), id)
	if err != nil {
		return sc.scheduleError(c, err)
	}
	return c.JSON(delivery)
}

// HandleRunDue processes every report whose schedule has passed. Store
// failures on single reports are reported next to the summary.
// POST /api/reports/scheduled/run-due
func (sc *ScheduledReportController) HandleRunDue(c *fiber.Ctx) error {
	summary, err := sc.svc.RunDue(c.UserContext())
	if summary == nil {
		return upstreamError(c, "Schedule", err, "Failed to process scheduled reports")
	}
	resp := fiber.Map{"success": err == nil, "summary": summary}
	if err != nil {
		log.Errorf("[Schedule] run-due finished with errors: %v", err)
		resp["error"] = err.Error()
	}
	return c.JSON(resp)
}

func (sc *ScheduledReportController) scheduleError(c *fiber.Ctx, err error) error {
	var ve *schedule.ValidationError
	switch {
	case errors.As(err, &ve):
		return errorJSON(c, fiber.StatusBadRequest, ve.Message)
	case errors.Is(err, schedule.ErrReportNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Scheduled report not found")
	}
	return upstreamError(c, "Schedule", err, "Scheduled report operation failed")
}
