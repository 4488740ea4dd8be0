package models

import "time"

// BillingPayment records invoice outcomes reported by the provider.
type BillingPayment struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Provider               string    `gorm:"type:varchar(20);not null;index:ux_billing_payments_provider_invoice,unique,priority:1" json:"provider"`
	ProviderInvoiceID      string    `gorm:"type:varchar(191);not null;index:ux_billing_payments_provider_invoice,unique,priority:2" json:"provider_invoice_id"`
	ProviderSubscriptionID string    `gorm:"type:varchar(191);not null;default:'';index" json:"provider_subscription_id"`
	ProviderCustomerID     string    `gorm:"type:varchar(191);not null;default:''" json:"provider_customer_id"`
	CustomerEmail          string    `gorm:"type:varchar(200);not null;default:''" json:"customer_email"`
	AmountDue              int64     `gorm:"not null;default:0" json:"amount_due"`
	AmountPaid             int64     `gorm:"not null;default:0" json:"amount_paid"`
	Currency               string    `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`
	Status                 string    `gorm:"type:varchar(16);not null;index" json:"status"`
	AttemptCount           int64     `gorm:"not null;default:0" json:"attempt_count"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
