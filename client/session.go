// Package client is a Go SDK for the portal API. It owns the browsing
// session lifecycle: the redirect-based login handshake, the cached identity
// and subscription snapshot, payment confirmation polling after a checkout
// redirect, and the visibility decision for gated catalog entries.
package client

import "time"

// Subscription plan identifiers as reported by the portal.
const (
	PlanFree    = "free"
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// Session is the client's current belief about caller identity and
// subscription entitlement. The zero value is the anonymous session.
type Session struct {
	UserID           string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Picture          string     `json:"picture,omitempty"`
	SubscriptionPlan string     `json:"subscription_plan"`
	SubscriptionEnds *time.Time `json:"subscription_ends,omitempty"`
	IsAdmin          bool       `json:"is_admin"`
}

// IsAnonymous reports whether the session carries no identity.
func (s Session) IsAnonymous() bool {
	return s.UserID == ""
}

// IsPremium reports whether the session's plan grants premium content.
// The expiry timestamp is deliberately not consulted here: it is display
// information only, and expiry enforcement belongs to the server.
func (s Session) IsPremium() bool {
	return s.SubscriptionPlan == PlanMonthly || s.SubscriptionPlan == PlanAnnual
}
