package models

import "time"

const (
	DonationTypeOneTime = "one-time"
	DonationTypeMonthly = "monthly"
)

// Donation is a single gift. Amount is stored in cents.
type Donation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DonorName     string    `gorm:"type:varchar(150)" json:"donorName"`
	Email         string    `gorm:"type:varchar(200);index" json:"email"`
	Amount        int64     `gorm:"not null;default:0" json:"amount"`
	Type          string    `gorm:"type:varchar(20);default:'one-time'" json:"type"`
	SponsorTier   string    `gorm:"type:varchar(50);default:''" json:"sponsorTier"`
	TransactionID string    `gorm:"type:varchar(191);default:''" json:"transactionId"`
	Status        string    `gorm:"type:varchar(30);default:'completed'" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
