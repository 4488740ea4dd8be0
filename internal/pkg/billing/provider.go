package billing

import "context"

// Provider is the subset of payment provider operations checkout needs.
type Provider interface {
	// FindPriceByLookupKey returns "" when no active price has the key.
	FindPriceByLookupKey(ctx context.Context, lookupKey string) (string, error)
	CreateProduct(ctx context.Context, spec ProductSpec) (string, error)
	CreatePrice(ctx context.Context, spec PriceSpec) (string, error)
	// FindCustomerByEmail returns "" when no customer has the email.
	FindCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCustomer(ctx context.Context, spec CustomerSpec) (string, error)
	CreateCheckoutSession(ctx context.Context, spec CheckoutSessionSpec) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type ProductSpec struct {
	Name        string
	Description string
	Metadata    map[string]string
}

type PriceSpec struct {
	ProductID  string
	LookupKey  string
	UnitAmount int64
	Currency   string
	Interval   string
	Metadata   map[string]string
}

type CustomerSpec struct {
	Email    string
	Metadata map[string]string
}

type CheckoutSessionSpec struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	// Metadata is attached to both the session and the subscription.
	Metadata map[string]string
}

// CheckoutSession is the hosted checkout redirect returned to clients.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
