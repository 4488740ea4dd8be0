package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/billing"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/entitlements"
)

// BillingController serves checkout, portal, status and the payment
// provider webhook.
type BillingController struct {
	svc *billing.Service
}

func NewBillingController(svc *billing.Service) *BillingController {
	return &BillingController{svc: svc}
}

type portalRequest struct {
	UserEmail string `json:"userEmail"`
	ReturnURL string `json:"returnUrl"`
}

// HandleCreateCheckout opens a hosted checkout session.
// POST /api/subscriptions/create-checkout
func (bc *BillingController) HandleCreateCheckout(c *fiber.Ctx) error {
	var req billing.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	session, err := bc.svc.CreateCheckout(ctx, req)
	if err != nil {
		return bc.billingError(c, err, "Failed to create checkout session")
	}
	return c.JSON(fiber.Map{"sessionId": session.SessionID, "url": session.URL})
}

// HandleCreatePortal opens the customer portal for an existing subscriber.
// POST /api/subscriptions/create-portal
func (bc *BillingController) HandleCreatePortal(c *fiber.Ctx) error {
	var req portalRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := bc.svc.CreatePortal(ctx, req.UserEmail, req.ReturnURL)
	if err != nil {
		return bc.billingError(c, err, "Failed to create portal session")
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleStatus returns the subscription summary for an email.
// GET /api/subscriptions/status?email=
func (bc *BillingController) HandleStatus(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := bc.svc.GetStatus(ctx, c.Query("email"))
	if err != nil {
		return bc.billingError(c, err, "Failed to get subscription status")
	}
	return c.JSON(st)
}

type tierView struct {
	entitlements.Tier
	FormattedPrice string `json:"formattedPrice"`
	DisplayName    string `json:"displayName"`
	Checkout       bool   `json:"checkout"`
}

// HandleTiers lists the tier table of a role, optionally with the upgrade
// path from the caller's current tier.
// GET /api/subscriptions/tiers?role=&current=&careerTrack=
func (bc *BillingController) HandleTiers(c *fiber.Ctx) error {
	role, err := entitlements.NormalizeRole(c.Query("role", "student"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid role. Supported: student, mentor, educator")
	}
	track := entitlements.CareerTrack(strings.TrimSpace(c.Query("careerTrack")))

	tiers := entitlements.Tiers(role)
	views := make([]tierView, 0, len(tiers))
	for _, t := range tiers {
		views = append(views, tierView{
			Tier:           t,
			FormattedPrice: entitlements.FormatPrice(t.Price),
			DisplayName:    entitlements.DisplayName(role, t.ID, track),
			Checkout:       !t.Free(),
		})
	}

	resp := fiber.Map{"role": role, "tiers": views}
	if current := strings.TrimSpace(c.Query("current")); current != "" {
		if _, err := entitlements.Resolve(role, current); err != nil {
			return errorJSON(c, fiber.StatusNotFound, "Unknown tier \""+current+"\" for role \""+string(role)+"\"")
		}
		resp["upgradePath"] = entitlements.UpgradePath(role, current)
	}
	return c.JSON(resp)
}

// HandleWebhook verifies and applies one payment provider delivery.
// POST /api/webhooks/payment-provider
func (bc *BillingController) HandleWebhook(c *fiber.Ctx) error {
	signature := firstHeaderValue(c, "Stripe-Signature")
	payload := c.Body()

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := bc.svc.HandleWebhook(ctx, payload, signature)
	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, billing.ErrWebhookSecretMissing):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Webhook handler not configured")
	case errors.Is(err, billing.ErrMissingSignature):
		return errorJSON(c, fiber.StatusBadRequest, "Missing stripe-signature header")
	case errors.Is(err, billing.ErrInvalidSignature), errors.Is(err, billing.ErrInvalidPayload):
		log.Warnf("[Billing] rejected webhook: %v", err)
		return errorJSON(c, fiber.StatusBadRequest, "Webhook Error: "+err.Error())
	}
	log.Errorf("[Billing] webhook handler failed: %v", err)
	return errorJSON(c, fiber.StatusInternalServerError, "Webhook handler failed")
}

func (bc *BillingController) billingError(c *fiber.Ctx, err error, fallback string) error {
	var ve *billing.ValidationError
	switch {
	case errors.As(err, &ve):
		return errorJSON(c, fiber.StatusBadRequest, ve.Message)
	case errors.Is(err, billing.ErrNotConfigured):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Payment processing is not configured")
	case errors.Is(err, billing.ErrCustomerNotFound):
		return errorJSON(c, fiber.StatusNotFound, "No subscription found for this account")
	}
	return upstreamError(c, "Billing", err, fallback)
}
