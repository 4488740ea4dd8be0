package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ConstructEvent verifies a delivery and returns the provider event. The
// second return value reports whether the signature was checked.
func (s *Service) ConstructEvent(payload []byte, signature string) (stripe.Event, bool, error) {
	unverified := s.cfg.UnverifiedWebhooksAllowed()
	if s.cfg.WebhookSecret == "" && !unverified {
		return stripe.Event{}, false, ErrWebhookSecretMissing
	}
	if strings.TrimSpace(signature) == "" {
		return stripe.Event{}, false, ErrMissingSignature
	}

	if unverified {
		log.Warnf("[Billing] webhook signature NOT verified: BILLING_ALLOW_UNVERIFIED_WEBHOOKS is enabled in %s", s.cfg.Environment)
		var ev stripe.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return stripe.Event{}, false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return ev, false, nil
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return ev, true, nil
}

// HandleWebhook verifies, records and applies one delivery. A redelivery
// of an event that already succeeded is acknowledged without side effects;
// an event whose earlier attempt failed is applied again.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	started := s.now()
	ev, verified, err := s.ConstructEvent(payload, signature)
	if err != nil {
		s.metrics.ObserveWebhook("unknown", "rejected", started)
		return nil, err
	}

	result := &WebhookResult{EventID: ev.ID, EventType: string(ev.Type), Received: true}
	created, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: ev.ID,
		EventType:       string(ev.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  verified,
	})
	if err != nil {
		s.metrics.ObserveWebhook(result.EventType, "error", started)
		return nil, fmt.Errorf("record webhook event: %w", err)
	}
	if !created && stored.Processed() {
		log.Infof("[Billing] duplicate webhook %s (%s) ignored", ev.ID, ev.Type)
		result.Duplicate = true
		s.metrics.ObserveWebhook(result.EventType, "duplicate", started)
		return result, nil
	}

	procErr := s.applyEvent(ctx, ev)
	if err := s.repo.MarkWebhookProcessed(ctx, stored.ID, errorString(procErr)); err != nil {
		log.Errorf("[Billing] failed to mark webhook %s processed: %v", ev.ID, err)
	}
	if procErr != nil {
		s.metrics.ObserveWebhook(result.EventType, "error", started)
		log.Errorf("[Billing] webhook %s (%s) failed: %v", ev.ID, ev.Type, procErr)
		return nil, procErr
	}

	s.metrics.ObserveWebhook(result.EventType, "processed", started)
	return result, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

func (s *Service) applyEvent(ctx context.Context, ev stripe.Event) error {
	decoded, err := DecodeEvent(ev)
	if err != nil {
		return err
	}

	switch e := decoded.(type) {
	case CheckoutCompleted:
		return s.applyCheckoutCompleted(ctx, e)
	case SubscriptionChanged:
		return s.applySubscriptionChanged(ctx, e)
	case InvoiceSettled:
		return s.applyInvoice(ctx, e)
	case TrialWillEnd:
		return s.applyTrialWillEnd(ctx, e)
	case Unhandled:
		log.Infof("[Billing] webhook %s ignored (unhandled type %s)", e.ID, e.Type)
	}
	return nil
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func timePtr(t time.Time) *time.Time {
	return &t
}
