package mail

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridSender struct {
	client *sendgrid.Client
}

// NewSendGridSender builds a v3 send client. baseURL is optional.
func NewSendGridSender(apiKey, baseURL string) *SendGridSender {
	client := sendgrid.NewSendClient(apiKey)
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return &SendGridSender{client: client}
}

func (s *SendGridSender) Name() string { return "sendgrid" }

func (s *SendGridSender) Send(ctx context.Context, from Address, msg Message) (*Result, error) {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(from.Name, from.Email))
	m.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}
	for _, att := range msg.Attachments {
		a := sgmail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		a.SetType(att.ContentType)
		a.SetFilename(att.Filename)
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("SendGrid error: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("SendGrid error: %s", resp.Body)
	}

	res := &Result{Provider: s.Name(), StatusCode: resp.StatusCode}
	if ids := resp.Headers["X-Message-Id"]; len(ids) > 0 {
		res.MessageID = ids[0]
	}
	return res, nil
}
