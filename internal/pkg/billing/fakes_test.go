package billing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hiddentreasuresnetwork/platform/app/models"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/cache"
	"gorm.io/gorm"
)

type fakeRepo struct {
	mu       sync.Mutex
	nextID   uint
	clock    time.Time
	accounts map[string]*models.BillingAccount
	subs     map[string]*models.BillingSubscription
	payments map[string]*models.BillingPayment
	events   map[string]*models.BillingWebhookEvent
	upserts  int
	// accountErr fails customer link writes.
	accountErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		accounts: map[string]*models.BillingAccount{},
		subs:     map[string]*models.BillingSubscription{},
		payments: map[string]*models.BillingPayment{},
		events:   map[string]*models.BillingWebhookEvent{},
	}
}

func (r *fakeRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	r.nextID++
	return r.clock
}

func (r *fakeRepo) UpsertBillingAccount(_ context.Context, account *models.BillingAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.accountErr != nil {
		return r.accountErr
	}
	key := account.SubjectID + "|" + account.Provider
	now := r.tick()
	if existing, ok := r.accounts[key]; ok {
		existing.ProviderCustomerID = account.ProviderCustomerID
		existing.Email = account.Email
		existing.UpdatedAt = now
		*account = *existing
		return nil
	}
	account.ID = r.nextID
	account.CreatedAt, account.UpdatedAt = now, now
	cp := *account
	r.accounts[key] = &cp
	return nil
}

func (r *fakeRepo) GetBillingAccountByEmail(_ context.Context, provider, email string) (*models.BillingAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Provider == provider && a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetBillingAccountByCustomerID(_ context.Context, provider, customerID string) (*models.BillingAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.BillingAccount
	for _, a := range r.accounts {
		if a.Provider == provider && a.ProviderCustomerID == customerID {
			if latest == nil || a.UpdatedAt.After(latest.UpdatedAt) {
				latest = a
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeRepo) GetSubscription(_ context.Context, provider, providerSubscriptionID string) (*models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[provider+"|"+providerSubscriptionID]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpsertSubscription(_ context.Context, sub *models.BillingSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	key := sub.Provider + "|" + sub.ProviderSubscriptionID
	now := r.tick()
	if existing, ok := r.subs[key]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.ID = r.nextID
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	cp := *sub
	r.subs[key] = &cp
	return nil
}

func (r *fakeRepo) ListSubscriptionsByEmail(_ context.Context, email string) ([]models.BillingSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BillingSubscription
	for _, s := range r.subs {
		if s.SubjectEmail == email {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpsertPayment(_ context.Context, payment *models.BillingPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *payment
	r.payments[payment.Provider+"|"+payment.ProviderInvoiceID] = &cp
	return nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(_ context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := event.Provider + "|" + event.ProviderEventID
	if existing, ok := r.events[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	r.tick()
	event.ID = r.nextID
	cp := *event
	r.events[key] = &cp
	stored := cp
	return true, &stored, nil
}

func (r *fakeRepo) MarkWebhookProcessed(_ context.Context, id uint, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			now := r.clock
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			e.Attempts++
			return nil
		}
	}
	return fmt.Errorf("event %d not found", id)
}

func (r *fakeRepo) subscription(id string) *models.BillingSubscription {
	sub, err := r.GetSubscription(context.Background(), models.BillingProviderStripe, id)
	if err != nil {
		return nil
	}
	return sub
}

type fakeProvider struct {
	mu        sync.Mutex
	prices    map[string]string
	customers map[string]string
	products  []ProductSpec
	newPrices []PriceSpec
	created   []CustomerSpec
	sessions  []CheckoutSessionSpec
	portals   []string
	calls     int
	failWith  error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{prices: map[string]string{}, customers: map[string]string{}}
}

func (p *fakeProvider) call() error {
	p.calls++
	return p.failWith
}

func (p *fakeProvider) FindPriceByLookupKey(_ context.Context, key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(); err != nil {
		return "", err
	}
	return p.prices[key], nil
}

func (p *fakeProvider) CreateProduct(_ context.Context, spec ProductSpec) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(); err != nil {
		return "", err
	}
	p.products = append(p.products, spec)
	return fmt.Sprintf("prod_%d", len(p.products)), nil
}

func (p *fakeProvider) CreatePrice(_ context.Context, spec PriceSpec) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(); err != nil {
		return "", err
	}
	p.newPrices = append(p.newPrices, spec)
	id := fmt.Sprintf("price_%d", len(p.newPrices))
	p.prices[spec.LookupKey] = id
	return id, nil
}

func (p *fakeProvider) FindCustomerByEmail(_ context.Context, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(); err != nil {
		return "", err
	}
	return p.customers[email], nil
}

func (p *fakeProvider) CreateCustomer(_ context.Context, spec CustomerSpec) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(); err != nil {
		return "", err
	}
	p.created = append(p.created, spec)
	id := fmt.Sprintf("cus_%d", len(p.created))
	p.customers[spec.Email] = id
	return id, nil
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, spec CheckoutSessionSpec) (*CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(); err != nil {
		return nil, err
	}
	p.sessions = append(p.sessions, spec)
	id := fmt.Sprintf("cs_test_%d", len(p.sessions))
	return &CheckoutSession{SessionID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (p *fakeProvider) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.call(); err != nil {
		return "", err
	}
	p.portals = append(p.portals, customerID+"|"+returnURL)
	return "https://billing.stripe.test/session/" + customerID, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	failed []PaymentFailedNotice
	trials []TrialEndingNotice
}

func (n *fakeNotifier) PaymentFailed(_ context.Context, notice PaymentFailedNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, notice)
	return nil
}

func (n *fakeNotifier) TrialEnding(_ context.Context, notice TrialEndingNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trials = append(n.trials, notice)
	return nil
}

type memoryCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}
