package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/billing"
)

type stubBillingRepo struct {
	billing.Repository
	accounts []models.BillingAccount
	subs     []models.BillingSubscription
}

func (r *stubBillingRepo) UpsertBillingAccount(_ context.Context, a *models.BillingAccount) error {
	r.accounts = append(r.accounts, *a)
	return nil
}

func (r *stubBillingRepo) GetBillingAccountByEmail(_ context.Context, provider, email string) (*models.BillingAccount, error) {
	for i := range r.accounts {
		if r.accounts[i].Provider == provider && r.accounts[i].Email == email {
			return &r.accounts[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBillingRepo) ListSubscriptionsByEmail(_ context.Context, email string) ([]models.BillingSubscription, error) {
	var out []models.BillingSubscription
	for _, s := range r.subs {
		if s.SubjectEmail == email {
			out = append(out, s)
		}
	}
	return out, nil
}

type stubProvider struct {
	customers map[string]string
	sessions  []billing.CheckoutSessionSpec
}

func (p *stubProvider) FindPriceByLookupKey(context.Context, string) (string, error) {
	return "price_existing", nil
}

func (p *stubProvider) CreateProduct(context.Context, billing.ProductSpec) (string, error) {
	return "prod_1", nil
}

func (p *stubProvider) CreatePrice(context.Context, billing.PriceSpec) (string, error) {
	return "price_1", nil
}

func (p *stubProvider) FindCustomerByEmail(_ context.Context, email string) (string, error) {
	return p.customers[email], nil
}

func (p *stubProvider) CreateCustomer(context.Context, billing.CustomerSpec) (string, error) {
	return "cus_new", nil
}

func (p *stubProvider) CreateCheckoutSession(_ context.Context, spec billing.CheckoutSessionSpec) (*billing.CheckoutSession, error) {
	p.sessions = append(p.sessions, spec)
	return &billing.CheckoutSession{SessionID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, nil
}

func (p *stubProvider) CreatePortalSession(_ context.Context, customerID, _ string) (string, error) {
	return "https://portal.test/" + customerID, nil
}

func newBillingApp(repo billing.Repository, provider billing.Provider, cfg billing.Config) *fiber.App {
	if cfg.AppURL == "" {
		cfg.AppURL = "https://htn.test"
	}
	bc := NewBillingController(billing.NewService(cfg, repo, provider))
	app := newTestApp("")
	app.Post("/subscriptions/create-checkout", bc.HandleCreateCheckout)
	app.Post("/subscriptions/create-portal", bc.HandleCreatePortal)
	app.Get("/subscriptions/status", bc.HandleStatus)
	app.Get("/subscriptions/tiers", bc.HandleTiers)
	app.Post("/webhooks/payment-provider", bc.HandleWebhook)
	return app
}

func TestCreateCheckout(t *testing.T) {
	valid := map[string]string{
		"userId":    "uid-1",
		"userEmail": "Student@Example.com",
		"userRole":  "student",
		"tier":      "silver",
	}

	t.Run("missing fields", func(t *testing.T) {
		app := newBillingApp(&stubBillingRepo{}, &stubProvider{}, billing.Config{})
		resp, body := doRequest(t, app, http.MethodPost, "/subscriptions/create-checkout", map[string]string{"userId": "uid-1"})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Missing required fields: userId, userEmail, userRole, tier"}`, string(body))
	})

	t.Run("free tier", func(t *testing.T) {
		provider := &stubProvider{}
		app := newBillingApp(&stubBillingRepo{}, provider, billing.Config{})
		req := map[string]string{"userId": "uid-1", "userEmail": "a@b.c", "userRole": "student", "tier": "free"}
		resp, body := doRequest(t, app, http.MethodPost, "/subscriptions/create-checkout", req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "Free tiers do not require checkout")
		assert.Empty(t, provider.sessions)
	})

	t.Run("unknown tier", func(t *testing.T) {
		app := newBillingApp(&stubBillingRepo{}, &stubProvider{}, billing.Config{})
		req := map[string]string{"userId": "uid-1", "userEmail": "a@b.c", "userRole": "student", "tier": "platinum"}
		resp, body := doRequest(t, app, http.MethodPost, "/subscriptions/create-checkout", req)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), `Invalid tier \"platinum\" for role \"student\"`)
	})

	t.Run("provider not configured", func(t *testing.T) {
		app := newBillingApp(&stubBillingRepo{}, nil, billing.Config{})
		resp, body := doRequest(t, app, http.MethodPost, "/subscriptions/create-checkout", valid)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Payment processing is not configured"}`, string(body))
	})

	t.Run("success", func(t *testing.T) {
		repo := &stubBillingRepo{}
		provider := &stubProvider{customers: map[string]string{}}
		app := newBillingApp(repo, provider, billing.Config{})
		resp, body := doRequest(t, app, http.MethodPost, "/subscriptions/create-checkout", valid)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
		assert.JSONEq(t, `{"sessionId":"cs_test_1","url":"https://checkout.test/cs_test_1"}`, string(body))

		require.Len(t, provider.sessions, 1)
		spec := provider.sessions[0]
		assert.Equal(t, "cus_new", spec.CustomerID)
		assert.Equal(t, "price_existing", spec.PriceID)
		assert.Equal(t, "https://htn.test/dashboard?subscription=success", spec.SuccessURL)
		assert.Equal(t, "uid-1", spec.Metadata["userId"])

		require.Len(t, repo.accounts, 1)
		assert.Equal(t, "student@example.com", repo.accounts[0].Email)
	})

	t.Run("malformed body", func(t *testing.T) {
		app := newBillingApp(&stubBillingRepo{}, &stubProvider{}, billing.Config{})
		resp, _ := doRequest(t, app, http.MethodPost, "/subscriptions/create-checkout", "{not json")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestSubscriptionStatus(t *testing.T) {
	end := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubBillingRepo{subs: []models.BillingSubscription{{
		Provider:               models.BillingProviderStripe,
		ProviderSubscriptionID: "sub_1",
		SubjectEmail:           "member@example.com",
		Status:                 "active",
		Tier:                   "gold",
		CurrentPeriodEnd:       &end,
		UpdatedAt:              time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}
	app := newBillingApp(repo, nil, billing.Config{})

	resp, body := doRequest(t, app, http.MethodGet, "/subscriptions/status?email=nobody@example.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"hasSubscription":false,"tier":"free","status":null}`, string(body))

	resp, body = doRequest(t, app, http.MethodGet, "/subscriptions/status?email=Member@Example.com", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeMap(t, body)
	assert.Equal(t, true, got["hasSubscription"])
	assert.Equal(t, "gold", got["tier"])
	assert.Equal(t, "active", got["status"])

	resp, body = doRequest(t, app, http.MethodGet, "/subscriptions/status", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Missing required query parameter: email"}`, string(body))
}

func TestCreatePortal(t *testing.T) {
	repo := &stubBillingRepo{accounts: []models.BillingAccount{{
		Provider:           models.BillingProviderStripe,
		ProviderCustomerID: "cus_local",
		Email:              "member@example.com",
	}}}
	provider := &stubProvider{customers: map[string]string{"remote@example.com": "cus_remote"}}
	app := newBillingApp(repo, provider, billing.Config{})

	resp, body := doRequest(t, app, http.MethodPost, "/subscriptions/create-portal", map[string]string{"userEmail": "member@example.com"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"url":"https://portal.test/cus_local"}`, string(body))

	resp, body = doRequest(t, app, http.MethodPost, "/subscriptions/create-portal", map[string]string{"userEmail": "remote@example.com"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"url":"https://portal.test/cus_remote"}`, string(body))

	resp, body = doRequest(t, app, http.MethodPost, "/subscriptions/create-portal", map[string]string{"userEmail": "ghost@example.com"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"No subscription found for this account"}`, string(body))

	resp, _ = doRequest(t, app, http.MethodPost, "/subscriptions/create-portal", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTiers(t *testing.T) {
	app := newBillingApp(&stubBillingRepo{}, nil, billing.Config{})

	resp, body := doRequest(t, app, http.MethodGet, "/subscriptions/tiers?role=student&current=bronze", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	got := decodeMap(t, body)
	assert.Equal(t, "student", got["role"])
	tiers, ok := got["tiers"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tiers, 4)
	first := tiers[0].(map[string]interface{})
	assert.Equal(t, "free", first["id"])
	assert.Equal(t, "Free", first["formattedPrice"])
	assert.Equal(t, false, first["checkout"])
	assert.Equal(t, []interface{}{"silver", "gold"}, got["upgradePath"])

	resp, _ = doRequest(t, app, http.MethodGet, "/subscriptions/tiers?role=pilot", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/subscriptions/tiers?role=student&current=diamond", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWebhookRejections(t *testing.T) {
	t.Run("no secret", func(t *testing.T) {
		app := newBillingApp(&stubBillingRepo{}, nil, billing.Config{})
		resp, body := doRequest(t, app, http.MethodPost, "/webhooks/payment-provider", `{"id":"evt_1"}`, "Stripe-Signature", "t=1,v1=abc")
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Webhook handler not configured"}`, string(body))
	})

	t.Run("missing signature", func(t *testing.T) {
		app := newBillingApp(&stubBillingRepo{}, nil, billing.Config{WebhookSecret: "whsec_test"})
		resp, body := doRequest(t, app, http.MethodPost, "/webhooks/payment-provider", `{"id":"evt_1"}`)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Missing stripe-signature header"}`, string(body))
	})

	t.Run("bad signature", func(t *testing.T) {
		app := newBillingApp(&stubBillingRepo{}, nil, billing.Config{WebhookSecret: "whsec_test"})
		resp, body := doRequest(t, app, http.MethodPost, "/webhooks/payment-provider", `{"id":"evt_1"}`, "Stripe-Signature", "t=1,v1=abc")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "Webhook Error:")
	})
}
