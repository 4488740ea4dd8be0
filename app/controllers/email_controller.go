package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/mail"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/usercontext"
)

type EmailController struct {
	mailer *mail.Mailer
	// members resolves the caller's own address; nil limits non-admin
	// callers to the contact notification.
	members MemberLookup
}

func NewEmailController(mailer *mail.Mailer, members MemberLookup) *EmailController {
	return &EmailController{mailer: mailer, members: members}
}

type sendEmailRequest struct {
	To       string                 `json:"to"`
	Subject  string                 `json:"subject"`
	HTML     string                 `json:"html"`
	Text     string                 `json:"text"`
	ReplyTo  string                 `json:"replyTo"`
	Template string                 `json:"template"`
	Data     map[string]interface{} `json:"data"`
}

// HandleSendEmail dispatches a transactional email. Admin keys may send
// raw html to anyone. Everyone else is held to named templates: the contact
// notification always goes to the admin inbox, and signed-in members may
// send any other template to their own address only. Contact confirmations
// for anonymous senders go out with the contact form submission.
// POST /api/email/send
func (ec *EmailController) HandleSendEmail(c *fiber.Ctx) error {
	var req sendEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if !usercontext.IsAdmin(c) {
		uid := usercontext.GetUserID(c)
		if !mail.IsTemplate(req.Template) {
			if uid == "" {
				return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
			}
			return errorJSON(c, fiber.StatusForbidden, "Raw html email requires an admin key")
		}
		// named templates only; never fall back to caller html
		req.HTML, req.Text = "", ""

		switch {
		case req.Template == mail.TemplateContact:
			req.To = ec.mailer.Config().AdminInbox()
		case uid == "":
			return errorJSON(c, fiber.StatusUnauthorized, "Authentication required for this template")
		case ec.members == nil:
			return errorJSON(c, fiber.StatusServiceUnavailable, "Database not configured")
		default:
			user, err := ec.members.GetByUID(ctx, uid)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorJSON(c, fiber.StatusUnauthorized, "Authentication required for this template")
			}
			if err != nil {
				return upstreamError(c, "Mail", err, "Failed to send email")
			}
			own := strings.TrimSpace(user.Email)
			to := strings.TrimSpace(req.To)
			if own == "" || (to != "" && !strings.EqualFold(to, own)) {
				return errorJSON(c, fiber.StatusForbidden, "Members may only email their own address")
			}
			req.To = own
		}
	}

	res, err := ec.mailer.SendTemplate(ctx, mail.Message{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
		ReplyTo: req.ReplyTo,
	}, req.Template, req.Data)
	switch {
	case errors.Is(err, mail.ErrMissingFields):
		return errorJSON(c, fiber.StatusBadRequest, "Missing required fields: to, subject")
	case errors.Is(err, mail.ErrMissingContent):
		return errorJSON(c, fiber.StatusBadRequest, "Missing email content: provide html or template with data")
	case err != nil:
		return upstreamError(c, "Mail", err, "Failed to send email")
	}

	if res.Dev {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Email logged (development mode - no email service configured)",
			"dev":     true,
		})
	}
	return c.JSON(fiber.Map{"success": true, "result": res})
}
