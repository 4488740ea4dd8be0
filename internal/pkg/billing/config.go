package billing

import (
	"strings"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/entitlements"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	// AllowUnverifiedWebhooks enables parsing unsigned deliveries when no
	// webhook secret is set. Honoured only when Environment is dev.
	AllowUnverifiedWebhooks bool
	Environment             string
	AppURL                  string
	// PriceRefs maps tier env keys (and their _MONTHLY variants) to
	// pre-provisioned provider price ids.
	PriceRefs map[string]string
}

func LoadConfig() Config {
	cfg := Config{
		SecretKey:               strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		WebhookSecret:           strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		AllowUnverifiedWebhooks: env.GetBool("BILLING_ALLOW_UNVERIFIED_WEBHOOKS", false),
		Environment:             env.GetEnv("APP_ENV", "prod"),
		AppURL:                  strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:3000"), "/"),
		PriceRefs:               map[string]string{},
	}

	for _, role := range []entitlements.Role{entitlements.RoleStudent, entitlements.RoleMentor, entitlements.RoleEducator} {
		for _, tier := range entitlements.Tiers(role) {
			if tier.PriceEnvKey == "" {
				continue
			}
			for _, key := range []string{tier.PriceEnvKey, tier.PriceEnvKey + "_MONTHLY"} {
				if v := strings.TrimSpace(env.GetEnv(key, "")); v != "" {
					cfg.PriceRefs[key] = v
				}
			}
		}
	}
	return cfg
}

// Configured reports whether provider API calls can be made.
func (c Config) Configured() bool {
	return c.SecretKey != ""
}

// UnverifiedWebhooksAllowed reports whether unsigned payloads may be parsed.
// This is a reduced-security path for local development only.
func (c Config) UnverifiedWebhooksAllowed() bool {
	return c.WebhookSecret == "" && c.AllowUnverifiedWebhooks && strings.TrimSpace(c.Environment) == "dev"
}

// PriceRef returns the pre-provisioned price id for tier and interval.
func (c Config) PriceRef(tier entitlements.Tier, interval string) string {
	if tier.PriceEnvKey == "" {
		return ""
	}
	key := tier.PriceEnvKey
	if interval == intervalMonth {
		key += "_MONTHLY"
	}
	return c.PriceRefs[key]
}
