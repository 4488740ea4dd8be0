package mail

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
)

var (
	ErrMissingFields  = errors.New("missing required fields: to, subject")
	ErrMissingContent = errors.New("missing email content: provide html or template with data")
)

// Message is one outbound email. Text defaults to HTML with tags stripped.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	ReplyTo     string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Result describes a finished delivery attempt.
type Result struct {
	Provider   string `json:"provider"`
	MessageID  string `json:"messageId,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	// Dev is set when the message was only logged.
	Dev bool `json:"-"`
}

// Sender delivers a message through one provider.
type Sender interface {
	Name() string
	Send(ctx context.Context, from Address, msg Message) (*Result, error)
}

type Address struct {
	Email string
	Name  string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Mailer renders templates and hands messages to the configured sender.
type Mailer struct {
	cfg       Config
	sender    Sender
	templates *Templates
	metrics   *metrics.Metrics
}

type Option func(*Mailer)

// WithSender overrides the provider picked from the config.
func WithSender(s Sender) Option {
	return func(m *Mailer) { m.sender = s }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Mailer) { m.metrics = mt }
}

// New picks SendGrid when an API key is set, then SMTP, and otherwise logs
// messages without sending them.
func New(cfg Config, opts ...Option) (*Mailer, error) {
	tpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	m := &Mailer{cfg: cfg, templates: tpl}
	for _, opt := range opts {
		opt(m)
	}
	if m.sender == nil {
		m.sender = senderFor(cfg)
	}
	log.Infof("[Mail] using %s provider", m.sender.Name())
	return m, nil
}

func senderFor(cfg Config) Sender {
	switch {
	case cfg.SendGridAPIKey != "":
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridURL)
	case cfg.SMTPHost != "":
		return NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	default:
		return DevSender{}
	}
}

// Provider returns the active provider name.
func (m *Mailer) Provider() string {
	return m.sender.Name()
}

func (m *Mailer) Config() Config {
	return m.cfg
}

// Send validates and delivers msg.
func (m *Mailer) Send(ctx context.Context, msg Message) (*Result, error) {
	msg.To = strings.TrimSpace(msg.To)
	msg.Subject = strings.TrimSpace(msg.Subject)
	if msg.To == "" || msg.Subject == "" {
		return nil, ErrMissingFields
	}
	if msg.HTML == "" {
		return nil, ErrMissingContent
	}
	if msg.Text == "" {
		msg.Text = StripTags(msg.HTML)
	}

	email, name := m.cfg.from()
	res, err := m.sender.Send(ctx, Address{Email: email, Name: name}, msg)
	if err != nil {
		m.metrics.Email(m.sender.Name(), "error")
		log.Errorf("[Mail] %s delivery to %s failed: %v", m.sender.Name(), msg.To, err)
		return nil, err
	}
	m.metrics.Email(m.sender.Name(), "sent")
	return res, nil
}

// SendTemplate renders a named template and sends it. An unknown template
// falls back to html.
func (m *Mailer) SendTemplate(ctx context.Context, msg Message, template string, data map[string]interface{}) (*Result, error) {
	if template != "" && data != nil {
		if m.templates.Has(template) {
			body, err := m.templates.Render(template, data)
			if err != nil {
				return nil, err
			}
			msg.HTML = body
		}
	}
	return m.Send(ctx, msg)
}

// Render exposes the template set to other packages.
func (m *Mailer) Render(template string, data map[string]interface{}) (string, error) {
	return m.templates.Render(template, data)
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes markup for the plain text part.
func StripTags(html string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(html, ""))
}

// preview shortens s to n runes.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
