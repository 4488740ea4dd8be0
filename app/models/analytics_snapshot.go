package models

import "time"

// AnalyticsSnapshot is a periodic roll-up of network metrics.
type AnalyticsSnapshot struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	TotalStudents      int64     `gorm:"default:0" json:"totalStudents"`
	ActiveStudents     int64     `gorm:"default:0" json:"activeStudents"`
	TotalMentors       int64     `gorm:"default:0" json:"totalMentors"`
	TotalOrganizations int64     `gorm:"default:0" json:"totalOrganizations"`
	LivesImpacted      int64     `gorm:"default:0" json:"livesImpacted"`
	ProgressToGoal     float64   `gorm:"default:0" json:"progressToGoal"`
	CreatedAt          time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}
