package provider

import (
	"context"
)

// Checkout session status values reported by the provider.
const (
	SessionOpen     = "open"
	SessionComplete = "complete"
	SessionExpired  = "expired"
)

// Payment status values reported by the provider.
const (
	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// CreateSessionInput holds the parameters for opening a hosted checkout page.
// Amount and currency are set by the caller from the server-side plan catalog.
type CreateSessionInput struct {
	PlanID     string
	Amount     int64
	Currency   string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Session describes a hosted checkout session at the provider.
type Session struct {
	ID            string
	URL           string
	Status        string // open, complete, expired
	PaymentStatus string // paid, unpaid
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

// WebhookEvent is a provider notification parsed from a signed webhook payload.
type WebhookEvent struct {
	Type      string
	SessionID string
}

// Provider defines the interface for hosted checkout integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// CreateSession opens a hosted checkout session and returns its redirect URL.
	CreateSession(ctx context.Context, input *CreateSessionInput) (*Session, error)

	// GetSession fetches the current state of a checkout session.
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// ParseWebhook verifies the payload signature and decodes the event.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
