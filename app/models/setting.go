package models

import (
	"strconv"
	"time"
)

const (
	SettingTotalLivesImpacted = "impact.total_lives_impacted"
	SettingFlightPlanGoal     = "impact.flight_plan_goal"
)

// Setting is a key/value row for operator-maintained figures.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required,oneof=string boolean integer float"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Int64 parses the value, returning def when it is not an integer.
func (s *Setting) Int64(def int64) int64 {
	if s == nil {
		return def
	}
	v, err := strconv.ParseInt(s.Value, 10, 64)
	if err != nil {
		return def
	}
	return v
}
