package billing

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/app/models"
)

const statusCacheTTL = 5 * time.Minute

// Status is the subscription summary returned to clients. Unknown
// subscribers get {hasSubscription:false, tier:"free", status:null}.
type Status struct {
	HasSubscription    bool       `json:"hasSubscription"`
	SubscriptionID     string     `json:"subscriptionId,omitempty"`
	Tier               string     `json:"tier"`
	Status             *string    `json:"status"`
	CareerTrack        *string    `json:"careerTrack,omitempty"`
	UserRole           *string    `json:"userRole,omitempty"`
	CurrentPeriodStart *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancelAtPeriodEnd,omitempty"`
	CanceledAt         *time.Time `json:"canceledAt,omitempty"`
}

// Entitled reports whether the subscription currently grants its tier.
func (st *Status) Entitled() bool {
	if st == nil || !st.HasSubscription || st.Status == nil {
		return false
	}
	sub := models.BillingSubscription{Status: *st.Status}
	return sub.IsEntitling()
}

func freeStatus() *Status {
	return &Status{HasSubscription: false, Tier: "free"}
}

func statusKey(email string) string {
	return "subscription:status:" + email
}

// GetStatus reads the subscriber's current subscription from local
// records. Entitling subscriptions win over ended ones; the most recently
// updated record wins within each group.
func (s *Service) GetStatus(ctx context.Context, email string) (*Status, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, validationErrorf("Missing required query parameter: email")
	}

	if cached, err := s.cache.Get(ctx, statusKey(email)); err == nil {
		var st Status
		if json.Unmarshal([]byte(cached), &st) == nil {
			return &st, nil
		}
	}

	subs, err := s.repo.ListSubscriptionsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	st := freeStatus()
	if sub := pickSubscription(subs); sub != nil {
		st = statusFromRecord(sub)
	}

	if b, err := json.Marshal(st); err == nil {
		if err := s.cache.Set(ctx, statusKey(email), string(b), statusCacheTTL); err != nil {
			log.Warnf("[Billing] status cache write failed: %v", err)
		}
	}
	return st, nil
}

func (s *Service) invalidateStatus(ctx context.Context, email string) {
	if email == "" {
		return
	}
	if err := s.cache.Delete(ctx, statusKey(email)); err != nil {
		log.Warnf("[Billing] status cache invalidation failed for %s: %v", email, err)
	}
}

func pickSubscription(subs []models.BillingSubscription) *models.BillingSubscription {
	var best *models.BillingSubscription
	for i := range subs {
		sub := &subs[i]
		if best == nil {
			best = sub
			continue
		}
		if sub.IsEntitling() != best.IsEntitling() {
			if sub.IsEntitling() {
				best = sub
			}
			continue
		}
		if sub.UpdatedAt.After(best.UpdatedAt) {
			best = sub
		}
	}
	return best
}

func statusFromRecord(sub *models.BillingSubscription) *Status {
	st := &Status{
		HasSubscription:    true,
		SubscriptionID:     sub.ProviderSubscriptionID,
		Tier:               firstNonEmpty(sub.Tier, "unknown"),
		Status:             stringPtr(sub.Status),
		CareerTrack:        stringPtr(sub.CareerTrack),
		UserRole:           stringPtr(sub.Role),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CanceledAt:         sub.CanceledAt,
	}
	return st
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
