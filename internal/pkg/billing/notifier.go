package billing

import (
	"context"
	"time"
)

// Notifier tells subscribers about billing events that need their attention.
type Notifier interface {
	PaymentFailed(ctx context.Context, notice PaymentFailedNotice) error
	TrialEnding(ctx context.Context, notice TrialEndingNotice) error
}

type PaymentFailedNotice struct {
	Email     string
	Tier      string
	AmountDue int64
	Currency  string
	InvoiceID string
}

type TrialEndingNotice struct {
	Email    string
	Tier     string
	TrialEnd *time.Time
}

type nopNotifier struct{}

func (nopNotifier) PaymentFailed(context.Context, PaymentFailedNotice) error { return nil }
func (nopNotifier) TrialEnding(context.Context, TrialEndingNotice) error     { return nil }
