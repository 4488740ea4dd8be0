package mail

import (
	"strings"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
)

const (
	defaultFromEmail  = "noreply@hiddentreasuresnetwork.org"
	defaultFromName   = "Hidden Treasures Network"
	defaultAdminEmail = "info@hiddentreasuresnetwork.org"
)

type Config struct {
	SendGridAPIKey string
	// SendGridURL overrides the v3 send endpoint (tests, EU data residency).
	SendGridURL  string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
	AdminEmail   string
	AppURL       string
}

func LoadConfig() Config {
	return Config{
		SendGridAPIKey: strings.TrimSpace(env.GetEnv("SENDGRID_API_KEY", "")),
		SendGridURL:    env.GetEnv("SENDGRID_API_URL", ""),
		SMTPHost:       env.GetEnv("SMTP_HOST", ""),
		SMTPPort:       env.GetEnv("SMTP_PORT", "587"),
		SMTPUsername:   env.GetEnv("SMTP_USERNAME", ""),
		SMTPPassword:   env.GetEnv("SMTP_PASSWORD", ""),
		FromEmail:      env.GetEnv("FROM_EMAIL", defaultFromEmail),
		FromName:       env.GetEnv("FROM_NAME", defaultFromName),
		AdminEmail:     env.GetEnv("ADMIN_EMAIL", defaultAdminEmail),
		AppURL:         strings.TrimRight(env.GetEnv("APP_URL", "https://hiddentreasuresnetwork.org"), "/"),
	}
}

func (c Config) from() (string, string) {
	email := strings.TrimSpace(c.FromEmail)
	if email == "" {
		email = defaultFromEmail
	}
	name := strings.TrimSpace(c.FromName)
	if name == "" {
		name = defaultFromName
	}
	return email, name
}

// AdminInbox is where contact notifications go.
func (c Config) AdminInbox() string {
	if email := strings.TrimSpace(c.AdminEmail); email != "" {
		return email
	}
	return defaultAdminEmail
}
