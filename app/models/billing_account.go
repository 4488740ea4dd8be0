package models

import "time"

const (
	BillingProviderStripe = "stripe"
)

// BillingAccount links a platform subject to its provider customer. Subjects
// sharing an email share the customer, so the customer id is not unique.
type BillingAccount struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SubjectID          string    `gorm:"type:varchar(128);not null;index:ux_billing_accounts_subject_provider,unique,priority:1" json:"user_id"`
	Provider           string    `gorm:"type:varchar(20);not null;index:ux_billing_accounts_subject_provider,unique,priority:2;index:idx_billing_accounts_provider_customer,priority:1" json:"provider"`
	ProviderCustomerID string    `gorm:"type:varchar(191);not null;index:idx_billing_accounts_provider_customer,priority:2" json:"provider_customer_id"`
	Email              string    `gorm:"type:varchar(200);default:'';index" json:"email"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
