package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/entitlements"
)

// CheckoutRequest is the ephemeral checkout intent sent by the client.
type CheckoutRequest struct {
	UserID          string `json:"userId"`
	UserEmail       string `json:"userEmail"`
	UserRole        string `json:"userRole"`
	Tier            string `json:"tier"`
	CareerTrack     string `json:"careerTrack,omitempty"`
	BillingInterval string `json:"billingInterval,omitempty"`
	SuccessURL      string `json:"successUrl,omitempty"`
	CancelURL       string `json:"cancelUrl,omitempty"`
}

func (r *CheckoutRequest) normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.UserEmail = strings.ToLower(strings.TrimSpace(r.UserEmail))
	r.UserRole = strings.TrimSpace(r.UserRole)
	r.Tier = strings.TrimSpace(r.Tier)
	r.CareerTrack = strings.TrimSpace(r.CareerTrack)
}

// CreateCheckout validates the intent, resolves a price and a customer, and
// opens a hosted subscription checkout. Validation failures never reach the
// provider.
func (s *Service) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	req.normalize()
	if req.UserID == "" || req.UserEmail == "" || req.UserRole == "" || req.Tier == "" {
		return nil, validationErrorf("Missing required fields: userId, userEmail, userRole, tier")
	}
	interval, ok := normalizeInterval(req.BillingInterval)
	if !ok {
		return nil, validationErrorf("Invalid billing interval %q. Supported: month, year", req.BillingInterval)
	}
	if req.CareerTrack != "" && !entitlements.ValidTrack(req.CareerTrack) {
		return nil, validationErrorf("Invalid career track %q", req.CareerTrack)
	}

	role, err := entitlements.NormalizeRole(req.UserRole)
	if err != nil {
		return nil, validationErrorf("Invalid tier %q for role %q", req.Tier, req.UserRole)
	}
	tier, err := entitlements.Resolve(role, req.Tier)
	if err != nil {
		return nil, validationErrorf("Invalid tier %q for role %q", req.Tier, req.UserRole)
	}
	if tier.Free() {
		return nil, validationErrorf("Free tiers do not require checkout")
	}

	if s.provider == nil {
		return nil, ErrNotConfigured
	}

	result := "error"
	defer func() { s.metrics.Checkout(string(role), result) }()

	priceID, err := s.resolvePrice(ctx, role, tier, req.UserRole, interval)
	if err != nil {
		return nil, err
	}

	customerID, err := s.resolveCustomer(ctx, req)
	if err != nil {
		return nil, err
	}

	meta := SubscriptionMetadata{
		UserID:      req.UserID,
		UserRole:    req.UserRole,
		Tier:        tier.ID,
		CareerTrack: req.CareerTrack,
		UserEmail:   req.UserEmail,
	}
	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutSessionSpec{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: firstNonEmpty(req.SuccessURL, s.cfg.AppURL+"/dashboard?subscription=success"),
		CancelURL:  firstNonEmpty(req.CancelURL, s.cfg.AppURL+"/pricing?subscription=cancelled"),
		Metadata:   meta.Map(),
	})
	if err != nil {
		return nil, err
	}

	result = "ok"
	log.Infof("[Billing] checkout session %s created for user=%s role=%s tier=%s interval=%s",
		session.SessionID, req.UserID, req.UserRole, tier.ID, interval)
	return session, nil
}

// resolvePrice prefers a configured price, then one provisioned earlier
// under the same lookup key, and finally provisions a product and price.
func (s *Service) resolvePrice(ctx context.Context, role entitlements.Role, tier entitlements.Tier, userRole, interval string) (string, error) {
	if ref := s.cfg.PriceRef(tier, interval); ref != "" {
		return ref, nil
	}

	key := lookupKey(role, tier.ID, interval)
	priceID, err := s.provider.FindPriceByLookupKey(ctx, key)
	if err != nil {
		return "", err
	}
	if priceID != "" {
		return priceID, nil
	}

	meta := map[string]string{"role": userRole, "tier": tier.ID}
	productID, err := s.provider.CreateProduct(ctx, ProductSpec{
		Name:        fmt.Sprintf("%s Membership", tier.Name),
		Description: fmt.Sprintf("Hidden Treasures Network - %s tier", tier.Name),
		Metadata:    meta,
	})
	if err != nil {
		return "", err
	}

	priceID, err = s.provider.CreatePrice(ctx, PriceSpec{
		ProductID:  productID,
		LookupKey:  key,
		UnitAmount: unitAmount(tier.Price, interval),
		Currency:   "usd",
		Interval:   interval,
		Metadata:   meta,
	})
	if err != nil {
		return "", err
	}
	log.Infof("[Billing] provisioned price %s (%s) for %s/%s", priceID, key, role, tier.ID)
	return priceID, nil
}

// resolveCustomer finds the provider customer by email or creates one, and
// records the subject link locally.
func (s *Service) resolveCustomer(ctx context.Context, req CheckoutRequest) (string, error) {
	customerID, err := s.provider.FindCustomerByEmail(ctx, req.UserEmail)
	if err != nil {
		return "", err
	}
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(ctx, CustomerSpec{
			Email: req.UserEmail,
			Metadata: map[string]string{
				"userId": req.UserID,
				"role":   req.UserRole,
			},
		})
		if err != nil {
			return "", err
		}
	}

	if err := s.repo.UpsertBillingAccount(ctx, &models.BillingAccount{
		SubjectID:          req.UserID,
		Provider:           models.BillingProviderStripe,
		ProviderCustomerID: customerID,
		Email:              req.UserEmail,
	}); err != nil {
		log.Warnf("[Billing] failed to store customer link for user=%s: %v", req.UserID, err)
	}
	return customerID, nil
}

// CreatePortal opens a customer portal session for the account owning email.
func (s *Service) CreatePortal(ctx context.Context, email, returnURL string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationErrorf("Missing required field: userEmail")
	}
	if s.provider == nil {
		return "", ErrNotConfigured
	}

	customerID := ""
	account, err := s.repo.GetBillingAccountByEmail(ctx, models.BillingProviderStripe, email)
	switch {
	case err == nil:
		customerID = account.ProviderCustomerID
	case !isNotFound(err):
		return "", err
	}
	if customerID == "" {
		customerID, err = s.provider.FindCustomerByEmail(ctx, email)
		if err != nil {
			return "", err
		}
	}
	if customerID == "" {
		return "", ErrCustomerNotFound
	}

	return s.provider.CreatePortalSession(ctx, customerID, firstNonEmpty(returnURL, s.cfg.AppURL+"/dashboard"))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
