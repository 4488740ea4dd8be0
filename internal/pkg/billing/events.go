package billing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
)

const (
	EventCheckoutCompleted    = "checkout.session.completed"
	EventSubscriptionCreated  = "customer.subscription.created"
	EventSubscriptionUpdated  = "customer.subscription.updated"
	EventSubscriptionDeleted  = "customer.subscription.deleted"
	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
	EventTrialWillEnd         = "customer.subscription.trial_will_end"
)

// Event is one decoded provider event. The concrete type is one of
// CheckoutCompleted, SubscriptionChanged, InvoiceSettled, TrialWillEnd or
// Unhandled.
type Event interface {
	Header() Envelope
	isEvent()
}

// Envelope carries the fields every event has.
type Envelope struct {
	ID      string
	Type    string
	Created time.Time
}

func (e Envelope) Header() Envelope { return e }
func (Envelope) isEvent()           {}

type CheckoutCompleted struct {
	Envelope
	SessionID      string
	Mode           string
	CustomerID     string
	SubscriptionID string
	CustomerEmail  string
	Metadata       SubscriptionMetadata
}

type SubscriptionChanged struct {
	Envelope
	Subscription SubscriptionSnapshot
}

// Deleted reports whether the subscription was removed at the provider.
func (e SubscriptionChanged) Deleted() bool {
	return e.Type == EventSubscriptionDeleted
}

type InvoiceSettled struct {
	Envelope
	Paid    bool
	Invoice InvoiceSnapshot
}

type TrialWillEnd struct {
	Envelope
	Subscription SubscriptionSnapshot
}

type Unhandled struct {
	Envelope
}

type SubscriptionSnapshot struct {
	ID                 string
	CustomerID         string
	Status             string
	PriceID            string
	Interval           string
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time
	TrialEnd           *time.Time
	Metadata           SubscriptionMetadata
}

type InvoiceSnapshot struct {
	ID             string
	CustomerID     string
	CustomerEmail  string
	SubscriptionID string
	AmountDue      int64
	AmountPaid     int64
	Currency       string
	AttemptCount   int64
	Metadata       SubscriptionMetadata
}

// DecodeEvent turns a provider event into its typed variant. Only the
// payload fields the synchronizer reads are decoded.
func DecodeEvent(ev stripe.Event) (Event, error) {
	env := Envelope{ID: ev.ID, Type: string(ev.Type), Created: time.Unix(ev.Created, 0).UTC()}
	if ev.Data == nil {
		return nil, fmt.Errorf("decode %s: event has no data", env.Type)
	}
	raw := ev.Data.Raw

	switch env.Type {
	case EventCheckoutCompleted:
		var session rawCheckoutSession
		if err := json.Unmarshal(raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout.session: %w", err)
		}
		email := session.CustomerEmail
		if session.CustomerDetails.Email != "" {
			email = session.CustomerDetails.Email
		}
		return CheckoutCompleted{
			Envelope:       env,
			SessionID:      session.ID,
			Mode:           session.Mode,
			CustomerID:     string(session.Customer),
			SubscriptionID: string(session.Subscription),
			CustomerEmail:  strings.ToLower(strings.TrimSpace(email)),
			Metadata:       metadataFromMap(session.Metadata),
		}, nil

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted, EventTrialWillEnd:
		var sub rawSubscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		snap := sub.snapshot()
		if env.Type == EventTrialWillEnd {
			return TrialWillEnd{Envelope: env, Subscription: snap}, nil
		}
		return SubscriptionChanged{Envelope: env, Subscription: snap}, nil

	case EventInvoicePaid, EventInvoicePaymentFailed:
		var inv rawInvoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		return InvoiceSettled{
			Envelope: env,
			Paid:     env.Type == EventInvoicePaid,
			Invoice:  inv.snapshot(),
		}, nil
	}

	return Unhandled{Envelope: env}, nil
}

// expandableID accepts either an object id or the expanded object.
type expandableID string

func (e *expandableID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*e = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = expandableID(s)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*e = expandableID(obj.ID)
	return nil
}

type rawCheckoutSession struct {
	ID              string       `json:"id"`
	Mode            string       `json:"mode"`
	Customer        expandableID `json:"customer"`
	Subscription    expandableID `json:"subscription"`
	CustomerEmail   string       `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

type rawSubscription struct {
	ID                 string       `json:"id"`
	Customer           expandableID `json:"customer"`
	Status             string       `json:"status"`
	CancelAtPeriodEnd  bool         `json:"cancel_at_period_end"`
	CanceledAt         int64        `json:"canceled_at"`
	TrialEnd           int64        `json:"trial_end"`
	CurrentPeriodStart int64        `json:"current_period_start"`
	CurrentPeriodEnd   int64        `json:"current_period_end"`
	Items              struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
			Price              struct {
				ID        string `json:"id"`
				Recurring struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

// snapshot reads billing periods from the subscription or, on newer API
// versions, from its first item.
func (s rawSubscription) snapshot() SubscriptionSnapshot {
	snap := SubscriptionSnapshot{
		ID:                s.ID,
		CustomerID:        string(s.Customer),
		Status:            s.Status,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
		CanceledAt:        unixTime(s.CanceledAt),
		TrialEnd:          unixTime(s.TrialEnd),
		Metadata:          metadataFromMap(s.Metadata),
	}
	start, end := s.CurrentPeriodStart, s.CurrentPeriodEnd
	if len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		snap.PriceID = item.Price.ID
		snap.Interval = item.Price.Recurring.Interval
		if start == 0 {
			start = item.CurrentPeriodStart
		}
		if end == 0 {
			end = item.CurrentPeriodEnd
		}
	}
	snap.CurrentPeriodStart = unixTime(start)
	snap.CurrentPeriodEnd = unixTime(end)
	return snap
}

type rawInvoice struct {
	ID            string       `json:"id"`
	Customer      expandableID `json:"customer"`
	CustomerEmail string       `json:"customer_email"`
	Subscription  expandableID `json:"subscription"`
	AmountDue     int64        `json:"amount_due"`
	AmountPaid    int64        `json:"amount_paid"`
	Currency      string       `json:"currency"`
	AttemptCount  int64        `json:"attempt_count"`
	Parent        struct {
		SubscriptionDetails struct {
			Subscription expandableID      `json:"subscription"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// snapshot resolves the subscription from the legacy top-level field or
// from parent.subscription_details.
func (i rawInvoice) snapshot() InvoiceSnapshot {
	subID := string(i.Subscription)
	if subID == "" {
		subID = string(i.Parent.SubscriptionDetails.Subscription)
	}
	return InvoiceSnapshot{
		ID:             i.ID,
		CustomerID:     string(i.Customer),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(i.CustomerEmail)),
		SubscriptionID: subID,
		AmountDue:      i.AmountDue,
		AmountPaid:     i.AmountPaid,
		Currency:       i.Currency,
		AttemptCount:   i.AttemptCount,
		Metadata:       metadataFromMap(i.Parent.SubscriptionDetails.Metadata),
	}
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
