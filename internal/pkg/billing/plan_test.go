package billing

import (
	"testing"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/entitlements"
)

func TestNormalizeInterval(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "", want: "year", wantOK: true},
		{in: "month", want: "month", wantOK: true},
		{in: "YEAR", want: "year", wantOK: true},
		{in: "week", want: "week", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := normalizeInterval(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("normalizeInterval(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	for _, status := range []string{"active", "trialing", "past_due"} {
		if !isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be entitling", status)
		}
	}
	for _, status := range []string{"canceled", "incomplete", "incomplete_expired", "unpaid", "paused"} {
		if isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}

func TestLookupKey(t *testing.T) {
	if got := lookupKey(entitlements.RoleStudent, "bronze", "year"); got != "htn_student_bronze_year" {
		t.Fatalf("lookupKey = %q", got)
	}
}

func TestUnitAmount(t *testing.T) {
	if got := unitAmount(9900, "year"); got != 9900 {
		t.Fatalf("yearly amount = %d", got)
	}
	if got := unitAmount(9900, "month"); got != 825 {
		t.Fatalf("monthly amount = %d, want 825", got)
	}
	if got := unitAmount(29900, "month"); got != 2492 {
		t.Fatalf("monthly amount = %d, want 2492", got)
	}
}

func TestConfigUnverifiedWebhooksAllowed(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"flag off", Config{Environment: "dev"}, false},
		{"dev with flag", Config{Environment: "dev", AllowUnverifiedWebhooks: true}, true},
		{"prod with flag", Config{Environment: "prod", AllowUnverifiedWebhooks: true}, false},
		{"secret set", Config{Environment: "dev", AllowUnverifiedWebhooks: true, WebhookSecret: "whsec"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.UnverifiedWebhooksAllowed(); got != tt.want {
				t.Fatalf("UnverifiedWebhooksAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigPriceRef(t *testing.T) {
	cfg := Config{PriceRefs: map[string]string{
		"STRIPE_PRICE_STUDENT_SILVER":         "price_year",
		"STRIPE_PRICE_STUDENT_SILVER_MONTHLY": "price_month",
	}}
	tier, _ := entitlements.Resolve(entitlements.RoleStudent, "silver")

	if got := cfg.PriceRef(tier, "year"); got != "price_year" {
		t.Fatalf("yearly ref = %q", got)
	}
	if got := cfg.PriceRef(tier, "month"); got != "price_month" {
		t.Fatalf("monthly ref = %q", got)
	}
	free, _ := entitlements.Resolve(entitlements.RoleStudent, "free")
	if got := cfg.PriceRef(free, "year"); got != "" {
		t.Fatalf("free ref = %q", got)
	}
}
