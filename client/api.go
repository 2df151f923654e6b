package client

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned by API calls when the portal does not
// recognize the ambient credential. The store treats it as "anonymous",
// never as a failure.
var ErrUnauthorized = errors.New("unauthorized")

// Payment statuses reported by GetPaymentStatus.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusExpired = "expired"
)

// ContentItem is a catalog entry as seen by the access gate. The client
// never mutates catalog entries; it only reads the premium flag.
type ContentItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	PremiumOnly bool   `json:"is_premium"`
	Locked      bool   `json:"is_locked"`
}

// Checkout is the redirect target for a newly opened checkout session.
type Checkout struct {
	Ref         string
	RedirectURL string
}

// API is the portal collaborator surface the client depends on. The REST
// implementation lives in this package; tests substitute fakes.
type API interface {
	// CurrentIdentity resolves the ambient credential into a session.
	// Returns ErrUnauthorized when the caller is anonymous.
	CurrentIdentity(ctx context.Context) (*Session, error)

	// ExchangeLoginToken redeems a one-time login token for a durable session.
	ExchangeLoginToken(ctx context.Context, token string) (*Session, error)

	// InvalidateSession revokes the server-side session. Best effort.
	InvalidateSession(ctx context.Context) error

	// CreateCheckout opens a checkout session for the plan and returns the
	// provider redirect address plus the reference used for confirmation.
	CreateCheckout(ctx context.Context, planID, origin string) (*Checkout, error)

	// GetPaymentStatus reports the payment state for a checkout reference.
	GetPaymentStatus(ctx context.Context, ref string) (string, error)

	// ListContent returns the catalog as visible to the current caller.
	ListContent(ctx context.Context, category string) ([]ContentItem, error)
}
