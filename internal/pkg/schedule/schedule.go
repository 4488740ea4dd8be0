package schedule

import (
	"regexp"
	"strings"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
)

// DeliveryHour is the local hour scheduled reports go out.
const DeliveryHour = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FrequencyLabel returns the human readable frequency.
func FrequencyLabel(frequency string) string {
	switch frequency {
	case models.ReportFrequencyDaily:
		return "Daily"
	case models.ReportFrequencyWeekly:
		return "Weekly (Mondays)"
	case models.ReportFrequencyMonthly:
		return "Monthly (1st of month)"
	}
	return frequency
}

// NextDate returns the next delivery time after from: the following day,
// the next Monday, or the first of the next month, always at 06:00 in
// from's location.
func NextDate(frequency string, from time.Time) time.Time {
	y, m, d := from.Date()
	loc := from.Location()

	switch frequency {
	case models.ReportFrequencyWeekly:
		days := (8 - int(from.Weekday())) % 7
		if days == 0 {
			days = 7
		}
		return time.Date(y, m, d+days, DeliveryHour, 0, 0, 0, loc)
	case models.ReportFrequencyMonthly:
		return time.Date(y, m+1, 1, DeliveryHour, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d+1, DeliveryHour, 0, 0, 0, loc)
	}
}

// ValidateEmails splits addresses into valid (trimmed, lower-cased) and
// invalid (as given).
func ValidateEmails(emails []string) (valid, invalid []string) {
	for _, email := range emails {
		trimmed := strings.ToLower(strings.TrimSpace(email))
		if emailPattern.MatchString(trimmed) {
			valid = append(valid, trimmed)
		} else {
			invalid = append(invalid, email)
		}
	}
	return valid, invalid
}
