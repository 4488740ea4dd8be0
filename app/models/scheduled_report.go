package models

import "time"

const (
	ReportFrequencyDaily   = "daily"
	ReportFrequencyWeekly  = "weekly"
	ReportFrequencyMonthly = "monthly"
)

const (
	DeliveryStatusSent    = "sent"
	DeliveryStatusFailed  = "failed"
	DeliveryStatusPartial = "partial"
)

// ReportOptions tunes what a scheduled report contains.
type ReportOptions struct {
	IncludeCharts  *bool    `json:"includeCharts,omitempty"`
	IncludeTables  *bool    `json:"includeTables,omitempty"`
	CustomSections []string `json:"customSections,omitempty"`
	DateRange      string   `json:"dateRange,omitempty" validate:"omitempty,oneof=last7days last30days lastMonth lastQuarter custom"`
}

type ScheduledReport struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Name          string        `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	Description   string        `gorm:"type:text" json:"description,omitempty"`
	ReportType    string        `gorm:"type:varchar(30);not null" json:"reportType" validate:"required,oneof=executive flightplan donor analytics custom"`
	Frequency     string        `gorm:"type:varchar(20);not null" json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Recipients    []string      `gorm:"type:text;serializer:json" json:"recipients" validate:"required,min=1"`
	Enabled       bool          `gorm:"default:true;index" json:"enabled"`
	LastSent      *time.Time    `gorm:"type:timestamp;default:null" json:"lastSent,omitempty"`
	NextScheduled *time.Time    `gorm:"type:timestamp;default:null;index" json:"nextScheduled,omitempty"`
	CreatedBy     string        `gorm:"type:varchar(128);default:''" json:"createdBy"`
	Options       ReportOptions `gorm:"type:text;serializer:json" json:"options"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ReportDelivery is one send attempt of a scheduled report.
type ReportDelivery struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ScheduledReportID uint      `gorm:"not null;index" json:"scheduledReportId"`
	SentAt            time.Time `gorm:"type:timestamp;not null" json:"sentAt"`
	Recipients        []string  `gorm:"type:text;serializer:json" json:"recipients"`
	Status            string    `gorm:"type:varchar(16);not null" json:"status"`
	ErrorMessage      string    `gorm:"type:text" json:"errorMessage,omitempty"`
	ReportSnapshot    string    `gorm:"type:varchar(255);default:''" json:"reportSnapshot,omitempty"`
}
