package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/app/models"
)

// applyCheckoutCompleted creates the local record from session metadata.
// Subscription events may arrive first; their status is kept.
func (s *Service) applyCheckoutCompleted(ctx context.Context, e CheckoutCompleted) error {
	if e.SubscriptionID == "" {
		log.Infof("[Billing] checkout %s has no subscription (mode=%s), nothing to sync", e.SessionID, e.Mode)
		return nil
	}

	sub, err := s.loadSubscription(ctx, e.SubscriptionID)
	if err != nil {
		return err
	}
	isNew := sub.ID == 0

	mergeMetadata(sub, e.Metadata)
	if sub.SubjectEmail == "" {
		sub.SubjectEmail = e.CustomerEmail
	}
	if e.CustomerID != "" {
		sub.ProviderCustomerID = e.CustomerID
	}
	if isNew || sub.Status == "" || sub.Status == models.BillingStatusIncomplete {
		sub.Status = models.BillingStatusActive
	}

	if err := s.saveSubscription(ctx, sub); err != nil {
		return err
	}
	if sub.SubjectID != "" && sub.ProviderCustomerID != "" {
		if err := s.repo.UpsertBillingAccount(ctx, &models.BillingAccount{
			SubjectID:          sub.SubjectID,
			Provider:           models.BillingProviderStripe,
			ProviderCustomerID: sub.ProviderCustomerID,
			Email:              sub.SubjectEmail,
		}); err != nil {
			log.Warnf("[Billing] failed to store customer link for user=%s: %v", sub.SubjectID, err)
		}
	}

	log.Infof("[Billing] checkout completed: user=%s tier=%s subscription=%s", sub.SubjectID, sub.Tier, sub.ProviderSubscriptionID)
	return nil
}

// applySubscriptionChanged mirrors created/updated/deleted events. Events
// older than the last applied one are skipped so reordered deliveries
// cannot roll the record back.
func (s *Service) applySubscriptionChanged(ctx context.Context, e SubscriptionChanged) error {
	snap := e.Subscription
	if snap.ID == "" {
		return fmt.Errorf("%s: subscription id missing", e.Type)
	}

	sub, err := s.loadSubscription(ctx, snap.ID)
	if err != nil {
		return err
	}
	if sub.LastEventAt != nil && e.Created.Before(*sub.LastEventAt) {
		log.Infof("[Billing] stale %s for %s ignored (event %s older than %s)", e.Type, snap.ID, e.Created, sub.LastEventAt)
		return nil
	}

	mergeMetadata(sub, snap.Metadata)
	if snap.CustomerID != "" {
		sub.ProviderCustomerID = snap.CustomerID
	}
	if snap.PriceID != "" {
		sub.ProviderPriceID = snap.PriceID
	}
	if snap.Interval != "" {
		sub.BillingInterval = snap.Interval
	}
	sub.Status = strings.ToLower(strings.TrimSpace(snap.Status))
	sub.CurrentPeriodStart = snap.CurrentPeriodStart
	sub.CurrentPeriodEnd = snap.CurrentPeriodEnd
	sub.CancelAtPeriodEnd = snap.CancelAtPeriodEnd
	sub.CanceledAt = snap.CanceledAt
	sub.TrialEnd = snap.TrialEnd

	if e.Deleted() {
		sub.Status = models.BillingStatusCanceled
		if sub.CanceledAt == nil {
			sub.CanceledAt = timePtr(e.Created)
		}
	}
	if sub.Status == "" {
		sub.Status = models.BillingStatusIncomplete
	}

	s.recoverSubject(ctx, sub)
	sub.LastEventAt = timePtr(e.Created)
	if err := s.saveSubscription(ctx, sub); err != nil {
		return err
	}

	log.Infof("[Billing] %s: subscription=%s user=%s status=%s cancel_at_period_end=%t",
		e.Type, sub.ProviderSubscriptionID, sub.SubjectID, sub.Status, sub.CancelAtPeriodEnd)
	return nil
}

// applyInvoice records the payment and updates the subscription's latest
// payment state. A failed payment moves an active subscription to past_due
// and notifies the subscriber.
func (s *Service) applyInvoice(ctx context.Context, e InvoiceSettled) error {
	inv := e.Invoice
	if inv.ID == "" {
		return fmt.Errorf("%s: invoice id missing", e.Type)
	}

	status := models.PaymentStatusFailed
	if e.Paid {
		status = models.PaymentStatusSucceeded
	}
	if err := s.repo.UpsertPayment(ctx, &models.BillingPayment{
		Provider:               models.BillingProviderStripe,
		ProviderInvoiceID:      inv.ID,
		ProviderSubscriptionID: inv.SubscriptionID,
		ProviderCustomerID:     inv.CustomerID,
		CustomerEmail:          inv.CustomerEmail,
		AmountDue:              inv.AmountDue,
		AmountPaid:             inv.AmountPaid,
		Currency:               firstNonEmpty(inv.Currency, "usd"),
		Status:                 status,
		AttemptCount:           inv.AttemptCount,
	}); err != nil {
		return fmt.Errorf("upsert payment: %w", err)
	}

	var sub *models.BillingSubscription
	if inv.SubscriptionID != "" {
		existing, err := s.repo.GetSubscription(ctx, models.BillingProviderStripe, inv.SubscriptionID)
		switch {
		case err == nil:
			sub = existing
		case !isNotFound(err):
			return fmt.Errorf("load subscription: %w", err)
		}
	}

	if sub != nil {
		sub.LatestInvoiceID = inv.ID
		sub.LatestPaymentStatus = status
		if !e.Paid && sub.Status == models.BillingStatusActive {
			sub.Status = models.BillingStatusPastDue
		}
		if err := s.saveSubscription(ctx, sub); err != nil {
			return err
		}
	}

	if e.Paid {
		log.Infof("[Billing] invoice %s paid (%d %s)", inv.ID, inv.AmountPaid, inv.Currency)
		return nil
	}

	notice := PaymentFailedNotice{
		Email:     inv.CustomerEmail,
		Tier:      inv.Metadata.Tier,
		AmountDue: inv.AmountDue,
		Currency:  firstNonEmpty(inv.Currency, "usd"),
		InvoiceID: inv.ID,
	}
	if sub != nil {
		notice.Email = firstNonEmpty(notice.Email, sub.SubjectEmail)
		notice.Tier = firstNonEmpty(notice.Tier, sub.Tier)
	}
	log.Warnf("[Billing] invoice %s payment failed (attempt %d)", inv.ID, inv.AttemptCount)
	if notice.Email == "" {
		log.Warnf("[Billing] no email for failed invoice %s, subscriber not notified", inv.ID)
		return nil
	}
	if err := s.notifier.PaymentFailed(ctx, notice); err != nil {
		log.Errorf("[Billing] payment failed notice for %s not sent: %v", inv.ID, err)
	}
	return nil
}

// applyTrialWillEnd notifies the subscriber; the record is unchanged.
func (s *Service) applyTrialWillEnd(ctx context.Context, e TrialWillEnd) error {
	snap := e.Subscription
	notice := TrialEndingNotice{
		Email:    snap.Metadata.UserEmail,
		Tier:     snap.Metadata.Tier,
		TrialEnd: snap.TrialEnd,
	}

	if snap.ID != "" {
		sub, err := s.repo.GetSubscription(ctx, models.BillingProviderStripe, snap.ID)
		switch {
		case err == nil:
			notice.Email = firstNonEmpty(notice.Email, sub.SubjectEmail)
			notice.Tier = firstNonEmpty(notice.Tier, sub.Tier)
		case !isNotFound(err):
			return fmt.Errorf("load subscription: %w", err)
		}
	}
	if notice.Email == "" && snap.CustomerID != "" {
		if account, err := s.repo.GetBillingAccountByCustomerID(ctx, models.BillingProviderStripe, snap.CustomerID); err == nil {
			notice.Email = account.Email
		}
	}

	if notice.Email == "" {
		log.Warnf("[Billing] trial for %s ends soon but no email is known", snap.ID)
		return nil
	}
	if err := s.notifier.TrialEnding(ctx, notice); err != nil {
		log.Errorf("[Billing] trial ending notice for %s not sent: %v", snap.ID, err)
	}
	return nil
}

// loadSubscription returns the stored record or a new unsaved one.
func (s *Service) loadSubscription(ctx context.Context, subscriptionID string) (*models.BillingSubscription, error) {
	sub, err := s.repo.GetSubscription(ctx, models.BillingProviderStripe, subscriptionID)
	if err == nil {
		return sub, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	return &models.BillingSubscription{
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: subscriptionID,
		BillingInterval:        models.BillingIntervalYear,
	}, nil
}

func (s *Service) saveSubscription(ctx context.Context, sub *models.BillingSubscription) error {
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	s.invalidateStatus(ctx, sub.SubjectEmail)
	return nil
}

// recoverSubject fills subject fields from the customer link when the
// provider payload carried no metadata.
func (s *Service) recoverSubject(ctx context.Context, sub *models.BillingSubscription) {
	if sub.SubjectID != "" || sub.ProviderCustomerID == "" {
		return
	}
	account, err := s.repo.GetBillingAccountByCustomerID(ctx, models.BillingProviderStripe, sub.ProviderCustomerID)
	if err != nil {
		return
	}
	sub.SubjectID = account.SubjectID
	if sub.SubjectEmail == "" {
		sub.SubjectEmail = account.Email
	}
}

// mergeMetadata copies non-empty metadata onto the record.
func mergeMetadata(sub *models.BillingSubscription, meta SubscriptionMetadata) {
	if meta.UserID != "" {
		sub.SubjectID = meta.UserID
	}
	if meta.UserEmail != "" {
		sub.SubjectEmail = strings.ToLower(meta.UserEmail)
	}
	if meta.UserRole != "" {
		sub.Role = meta.UserRole
	}
	if meta.Tier != "" {
		sub.Tier = meta.Tier
	}
	if meta.CareerTrack != "" {
		sub.CareerTrack = meta.CareerTrack
	}
}
