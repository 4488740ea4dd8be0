package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/messaging"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

// MessageController serves the caller's message threads. Routes sit
// behind middleware.RequireUser.
type MessageController struct {
	svc *messaging.Service
}

func NewMessageController(svc *messaging.Service) *MessageController {
	return &MessageController{svc: svc}
}

type postMessageRequest struct {
	Body string `json:"message"`
}

// GET /api/messages/threads?limit=
func (mc *MessageController) HandleListThreads(c *fiber.Ctx) error {
	threads, err := mc.svc.Threads(c.UserContext(), usercontext.GetUserID(c), c.QueryInt("limit"))
	if err != nil {
		return mc.messagingError(c, err)
	}
	return c.JSON(fiber.Map{"threads": threads})
}

// GET /api/messages/threads/:id
func (mc *MessageController) HandleGetThread(c *fiber.Ctx) error {
	view, err := mc.svc.Thread(c.UserContext(), c.Params("id"), usercontext.GetUserID(c))
	if err != nil {
		return mc.messagingError(c, err)
	}
	return c.JSON(view)
}

// POST /api/messages/threads
func (mc *MessageController) HandleCreateThread(c *fiber.Ctx) error {
	var in messaging.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	thread, err := mc.svc.Create(c.UserContext(), usercontext.GetUserID(c), in)
	if err != nil {
		return mc.messagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(thread)
}

// POST /api/messages/threads/:id/messages
func (mc *MessageController) HandlePostMessage(c *fiber.Ctx) error {
	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	msg, err := mc.svc.Post(c.UserContext(), c.Params("id"), usercontext.GetUserID(c), req.Body)
	if err != nil {
		return mc.messagingError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (mc *MessageController) messagingError(c *fiber.Ctx, err error) error {
	var ve *messaging.ValidationError
	switch {
	case errors.As(err, &ve):
		return errorJSON(c, fiber.StatusBadRequest, ve.Message)
	case errors.Is(err, messaging.ErrThreadNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Thread not found")
	}
	return upstreamError(c, "Messaging", err, "Messaging operation failed")
}
