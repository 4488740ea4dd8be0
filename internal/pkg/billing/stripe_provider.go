package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeProvider implements Provider with its own Stripe API client.
type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{api: client.New(secretKey, nil)}
}

func (p *StripeProvider) FindPriceByLookupKey(ctx context.Context, key string) (string, error) {
	params := &stripe.PriceListParams{
		LookupKeys: stripe.StringSlice([]string{key}),
		Active:     stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := p.api.Prices.List(params)
	for it.Next() {
		return it.Price().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", providerError("list prices", err)
	}
	return "", nil
}

func (p *StripeProvider) CreateProduct(ctx context.Context, spec ProductSpec) (string, error) {
	params := &stripe.ProductParams{
		Name:        stripe.String(spec.Name),
		Description: stripe.String(spec.Description),
	}
	params.Context = ctx
	for k, v := range spec.Metadata {
		params.AddMetadata(k, v)
	}

	product, err := p.api.Products.New(params)
	if err != nil {
		return "", providerError("create product", err)
	}
	return product.ID, nil
}

func (p *StripeProvider) CreatePrice(ctx context.Context, spec PriceSpec) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(spec.ProductID),
		UnitAmount: stripe.Int64(spec.UnitAmount),
		Currency:   stripe.String(spec.Currency),
		LookupKey:  stripe.String(spec.LookupKey),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(spec.Interval),
		},
	}
	params.Context = ctx
	for k, v := range spec.Metadata {
		params.AddMetadata(k, v)
	}

	price, err := p.api.Prices.New(params)
	if err != nil {
		return "", providerError("create price", err)
	}
	return price.ID, nil
}

func (p *StripeProvider) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := p.api.Customers.List(params)
	for it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", providerError("list customers", err)
	}
	return "", nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, spec CustomerSpec) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(spec.Email),
	}
	params.Context = ctx
	for k, v := range spec.Metadata {
		params.AddMetadata(k, v)
	}

	customer, err := p.api.Customers.New(params)
	if err != nil {
		return "", providerError("create customer", err)
	}
	return customer.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, spec CheckoutSessionSpec) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(spec.CustomerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(spec.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(spec.SuccessURL),
		CancelURL:  stripe.String(spec.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: spec.Metadata,
		},
		AllowPromotionCodes:      stripe.Bool(true),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
	}
	params.Context = ctx
	for k, v := range spec.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, providerError("create checkout session", err)
	}
	return &CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", providerError("create portal session", err)
	}
	return session.URL, nil
}

// providerError keeps Stripe's human readable message instead of the JSON
// form stripe.Error renders by default.
func providerError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && strings.TrimSpace(se.Msg) != "" {
		return &ProviderError{Op: op, Err: errors.New(se.Msg)}
	}
	return &ProviderError{Op: op, Err: err}
}
