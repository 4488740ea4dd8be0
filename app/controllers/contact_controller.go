package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/contact"
)

type ContactController struct {
	svc *contact.Service
}

func NewContactController(svc *contact.Service) *ContactController {
	return &ContactController{svc: svc}
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

// HandleSubmit stores a contact form submission.
// POST /api/contact
func (cc *ContactController) HandleSubmit(c *fiber.Ctx) error {
	var in contact.Input
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := cc.svc.Submit(ctx, in)
	if err != nil {
		return cc.contactError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "id": msg.ID})
}

// GET /api/admin/contact?limit=
func (cc *ContactController) HandleList(c *fiber.Ctx) error {
	list, err := cc.svc.List(c.UserContext(), c.QueryInt("limit"))
	if err != nil {
		return cc.contactError(c, err)
	}
	return c.JSON(fiber.Map{"messages": list})
}

// GET /api/admin/contact/unread-count
func (cc *ContactController) HandleUnreadCount(c *fiber.Ctx) error {
	n, err := cc.svc.UnreadCount(c.UserContext())
	if err != nil {
		return cc.contactError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// PATCH /api/admin/contact/:id
func (cc *ContactController) HandleUpdateStatus(c *fiber.Ctx) error {
	id, ok := uintParam(c, "id")
	if !ok {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid message id")
	}
	var req contactStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	msg, err := cc.svc.MarkStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return cc.contactError(c, err)
	}
	return c.JSON(msg)
}

func (cc *ContactController) contactError(c *fiber.Ctx, err error) error {
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorJSON(c, fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, contact.ErrMessageNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Message not found")
	}
	return upstreamError(c, "Contact", err, "Failed to process contact message")
}
