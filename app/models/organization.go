package models

import "time"

// Organization is a partner school, club, nonprofit or company.
type Organization struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(200);not null" json:"name"`
	Type             string    `gorm:"type:varchar(50)" json:"type"`
	Category         string    `gorm:"type:varchar(100);default:''" json:"category"`
	City             string    `gorm:"type:varchar(100);default:''" json:"city"`
	State            string    `gorm:"type:varchar(100);default:''" json:"state"`
	Country          string    `gorm:"type:varchar(100);default:''" json:"country"`
	ContactEmail     string    `gorm:"type:varchar(200);default:''" json:"contactEmail"`
	StudentsImpacted int       `gorm:"default:0" json:"studentsImpacted"`
	Status           string    `gorm:"type:varchar(30);default:'pending'" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// WaitlistEntry is a pre-launch signup.
type WaitlistEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(200);uniqueIndex" json:"email"`
	Name         string    `gorm:"type:varchar(150);default:''" json:"name"`
	Role         string    `gorm:"type:varchar(50);default:''" json:"role"`
	Organization string    `gorm:"type:varchar(200);default:''" json:"organization"`
	Source       string    `gorm:"type:varchar(100);default:''" json:"source"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}

// Sponsor is a corporate or individual funding partner.
type Sponsor struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	OrgName            string    `gorm:"type:varchar(200);not null" json:"orgName"`
	TierID             string    `gorm:"type:varchar(50);default:''" json:"tierId"`
	TotalContributions int64     `gorm:"default:0" json:"totalContributions"`
	Region             string    `gorm:"type:varchar(100);default:''" json:"region"`
	ProgramSupport     string    `gorm:"type:varchar(255);default:''" json:"programSupport"`
	CompanyDescription string    `gorm:"type:text" json:"companyDescription"`
	ContactEmail       string    `gorm:"type:varchar(200);default:''" json:"contactEmail"`
	Status             string    `gorm:"type:varchar(30);default:'active'" json:"status"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
