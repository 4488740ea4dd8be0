package mail

import (
	"context"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/contact"
)

// ContactNotifier sends the contact form emails.
type ContactNotifier struct {
	mailer *Mailer
}

var _ contact.Notifier = (*ContactNotifier)(nil)

func NewContactNotifier(m *Mailer) *ContactNotifier {
	return &ContactNotifier{mailer: m}
}

// NotifyAdmin forwards the submission to the admin inbox, replying to the sender.
func (n *ContactNotifier) NotifyAdmin(ctx context.Context, msg *models.ContactMessage) error {
	_, err := n.mailer.SendTemplate(ctx, Message{
		To:      n.mailer.Config().AdminInbox(),
		Subject: "New contact message from " + msg.Name,
		ReplyTo: msg.Email,
	}, TemplateContact, map[string]interface{}{
		"name":         msg.Name,
		"email":        msg.Email,
		"organization": msg.Organization,
		"role":         contact.RoleOrDefault(msg),
		"message":      msg.Message,
	})
	return err
}

// Confirm sends the sender a copy of their message.
func (n *ContactNotifier) Confirm(ctx context.Context, msg *models.ContactMessage) error {
	_, err := n.mailer.SendTemplate(ctx, Message{
		To:      msg.Email,
		Subject: "We received your message - Hidden Treasures Network",
	}, TemplateContactConfirmation, map[string]interface{}{
		"name":    msg.Name,
		"message": msg.Message,
	})
	return err
}
