package models

import "time"

const (
	BillingIntervalMonth = "month"
	BillingIntervalYear  = "year"
)

const (
	BillingStatusActive            = "active"
	BillingStatusTrialing          = "trialing"
	BillingStatusPastDue           = "past_due"
	BillingStatusCanceled          = "canceled"
	BillingStatusUnpaid            = "unpaid"
	BillingStatusIncomplete        = "incomplete"
	BillingStatusIncompleteExpired = "incomplete_expired"
	BillingStatusPaused            = "paused"
)

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusPending   = "pending"
	PaymentStatusFailed    = "failed"
)

// BillingSubscription is the local record of a provider subscription.
// Rows are never hard-deleted: cancellation only changes Status.
type BillingSubscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	SubjectID              string     `gorm:"type:varchar(128);not null;index" json:"user_id"`
	SubjectEmail           string     `gorm:"type:varchar(200);not null;default:'';index" json:"user_email"`
	Role                   string     `gorm:"type:varchar(50);not null;default:''" json:"user_role"`
	Tier                   string     `gorm:"type:varchar(50);not null;default:'free'" json:"tier"`
	CareerTrack            string     `gorm:"type:varchar(50);not null;default:''" json:"career_track"`
	Provider               string     `gorm:"type:varchar(20);not null;index:idx_billing_subscriptions_provider_status,priority:1;index:ux_billing_subscriptions_provider_subid,unique,priority:1" json:"provider"`
	ProviderCustomerID     string     `gorm:"type:varchar(191);not null;default:'';index" json:"provider_customer_id"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_billing_subscriptions_provider_subid,unique,priority:2" json:"provider_subscription_id"`
	ProviderPriceID        string     `gorm:"type:varchar(191);not null;default:''" json:"provider_price_id"`
	BillingInterval        string     `gorm:"type:varchar(16);not null;default:'year'" json:"billing_interval"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'incomplete';index:idx_billing_subscriptions_provider_status,priority:2" json:"status"`
	CurrentPeriodStart     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd      bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CanceledAt             *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	TrialEnd               *time.Time `gorm:"type:timestamp;default:null" json:"trial_end,omitempty"`
	LatestInvoiceID        string     `gorm:"type:varchar(191);not null;default:''" json:"latest_invoice_id"`
	LatestPaymentStatus    string     `gorm:"type:varchar(16);not null;default:''" json:"latest_payment_status"`
	LastEventAt            *time.Time `gorm:"type:timestamp;default:null" json:"last_event_at,omitempty"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitling reports whether the status grants the paid tier.
func (s *BillingSubscription) IsEntitling() bool {
	switch s.Status {
	case BillingStatusActive, BillingStatusTrialing, BillingStatusPastDue:
		return true
	}
	return false
}
