package mail

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

const layout = "layouts/email"

// Template names accepted by SendTemplate.
const (
	TemplateContact             = "contact"
	TemplateContactConfirmation = "contact-confirmation"
	TemplateDonationReceipt     = "donation-receipt"
	TemplateWelcome             = "welcome"
	TemplatePaymentFailed       = "payment-failed"
	TemplateTrialEnding         = "trial-ending"
	TemplateScheduledReport     = "scheduled-report"
)

var templateNames = map[string]bool{
	TemplateContact:             true,
	TemplateContactConfirmation: true,
	TemplateDonationReceipt:     true,
	TemplateWelcome:             true,
	TemplatePaymentFailed:       true,
	TemplateTrialEnding:         true,
	TemplateScheduledReport:     true,
}

// IsTemplate reports whether name is one of the embedded templates.
func IsTemplate(name string) bool {
	return templateNames[name]
}

// Templates is the embedded email template set.
type Templates struct {
	engine *html.Engine
}

func LoadTemplates() (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(map[string]interface{}{
		"dollars": dollars,
		"today":   func() string { return time.Now().Format("1/2/2006") },
		"date":    formatDate,
	})
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	return &Templates{engine: engine}, nil
}

func (t *Templates) Has(name string) bool {
	return templateNames[name]
}

func (t *Templates) Render(name string, data map[string]interface{}) (string, error) {
	if !t.Has(name) {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.engine.Render(&buf, name, data, layout); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// dollars formats an amount in cents.
func dollars(v interface{}) string {
	var cents float64
	switch n := v.(type) {
	case int:
		cents = float64(n)
	case int64:
		cents = float64(n)
	case float64:
		cents = n
	case nil:
		cents = 0
	default:
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("$%.2f", cents/100)
}

func formatDate(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("1/2/2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("1/2/2006")
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed.Format("1/2/2006")
		}
		return t
	}
	return ""
}
