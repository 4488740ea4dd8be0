package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationPriorityHigh   = "high"
	NotificationPriorityMedium = "medium"
	NotificationPriorityLow    = "low"
)

type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"type:varchar(128);index" json:"userId"`
	Title     string         `gorm:"type:varchar(150)" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	Type      string         `gorm:"type:varchar(50)" json:"type"`
	Category  string         `gorm:"type:varchar(50)" json:"category"`
	Priority  string         `gorm:"type:varchar(10);default:'medium';index" json:"priority" validate:"oneof=high medium low"`
	ActionURL string         `gorm:"type:varchar(255);default:''" json:"actionUrl,omitempty"`
	IsRead    bool           `gorm:"default:false" json:"read"`
	ReadAt    *time.Time     `gorm:"type:timestamp;default:null" json:"readAt,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkAsRead flags the notification as read
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return db.Model(n).Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}
