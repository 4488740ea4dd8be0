package billing

import (
	"fmt"
	"strings"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/entitlements"
)

const (
	intervalMonth = "month"
	intervalYear  = "year"
)

func normalizeInterval(interval string) (string, bool) {
	i := strings.ToLower(strings.TrimSpace(interval))
	switch i {
	case "":
		return intervalYear, true
	case intervalMonth, intervalYear:
		return i, true
	default:
		return i, false
	}
}

func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing", "past_due":
		return true
	default:
		return false
	}
}

// lookupKey identifies a provisioned price so repeated checkouts reuse it.
func lookupKey(role entitlements.Role, tier, interval string) string {
	return fmt.Sprintf("htn_%s_%s_%s", role, tier, interval)
}

// unitAmount returns the charge per interval. Tier prices are yearly; the
// monthly amount is rounded up to the next cent.
func unitAmount(yearly int64, interval string) int64 {
	if interval == intervalMonth {
		return (yearly + 11) / 12
	}
	return yearly
}
