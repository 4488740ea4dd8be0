package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDate(t *testing.T) {
	// 2026-10-14 is a Wednesday.
	from := time.Date(2026, 10, 14, 15, 42, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		from      time.Time
		want      time.Time
	}{
		{"daily", from, time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC)},
		{"weekly", from, time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)},
		{"weekly", time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC), time.Date(2026, 10, 26, 6, 0, 0, 0, time.UTC)},
		{"weekly", time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC), time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)},
		{"monthly", from, time.Date(2026, 11, 1, 6, 0, 0, 0, time.UTC)},
		{"monthly", time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)},
		{"monthly", time.Date(2026, 12, 5, 8, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 6, 0, 0, 0, time.UTC)},
		{"daily", time.Date(2026, 12, 31, 8, 0, 0, 0, time.UTC), time.Date(2027, 1, 1, 6, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.frequency+" "+tt.from.Format(time.RFC3339), func(t *testing.T) {
			assert.Equal(t, tt.want, NextDate(tt.frequency, tt.from))
		})
	}
}

func TestNextDateKeepsLocation(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	next := NextDate("daily", time.Date(2026, 3, 1, 22, 0, 0, 0, loc))
	assert.Equal(t, loc, next.Location())
	assert.Equal(t, 6, next.Hour())
}

func TestFrequencyLabel(t *testing.T) {
	assert.Equal(t, "Daily", FrequencyLabel("daily"))
	assert.Equal(t, "Weekly (Mondays)", FrequencyLabel("weekly"))
	assert.Equal(t, "Monthly (1st of month)", FrequencyLabel("monthly"))
	assert.Equal(t, "hourly", FrequencyLabel("hourly"))
}

func TestValidateEmails(t *testing.T) {
	valid, invalid := ValidateEmails([]string{" Board@HTN.org ", "nobody", "a@b", "x y@z.com", "donor@example.com"})
	assert.Equal(t, []string{"board@htn.org", "donor@example.com"}, valid)
	assert.Equal(t, []string{"nobody", "a@b", "x y@z.com"}, invalid)
}
