package models

import "time"

const (
	CONTACT_STATUS_NEW     = "new"
	CONTACT_STATUS_READ    = "read"
	CONTACT_STATUS_REPLIED = "replied"
)

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	Email        string    `gorm:"type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	Organization string    `gorm:"type:varchar(200);default:''" json:"organization,omitempty" validate:"max=200"`
	Role         string    `gorm:"type:varchar(50);default:''" json:"role,omitempty" validate:"max=50"`
	Message      string    `gorm:"type:text;not null" json:"message" validate:"required,max=5000"`
	Status       string    `gorm:"type:varchar(16);not null;default:'new';index" json:"status" validate:"oneof=new read replied"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
