package mail

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
)

// DevSender logs messages instead of sending them. It is used when no
// provider is configured.
type DevSender struct{}

func (DevSender) Name() string { return "dev" }

func (DevSender) Send(_ context.Context, _ Address, msg Message) (*Result, error) {
	log.Infof("[Mail] email would be sent (no email service configured): to=%s subject=%q content=%s",
		msg.To, msg.Subject, preview(msg.HTML, 200))
	return &Result{Provider: "dev", Dev: true}, nil
}
