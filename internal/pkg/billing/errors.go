package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured means no payment provider credentials are set.
	ErrNotConfigured = errors.New("payment provider not configured")
	// ErrCustomerNotFound means no provider customer matches the email.
	ErrCustomerNotFound = errors.New("billing customer not found")
	// ErrWebhookSecretMissing means signed deliveries cannot be verified.
	ErrWebhookSecretMissing = errors.New("webhook secret not configured")
	ErrMissingSignature     = errors.New("missing webhook signature")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
)

// ValidationError is a client error detected before any provider call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a failed payment provider call. Error returns the
// upstream message unchanged.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
