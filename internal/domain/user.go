package domain

import (
	"time"
)

// User represents a registered member of the portal. Accounts are created on
// first login through the external identity provider; there is no local
// password.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Picture          string     `json:"picture,omitempty"`
	SubscriptionPlan string     `json:"subscription_plan"`
	SubscriptionEnds *time.Time `json:"subscription_ends,omitempty"`
	IsAdmin          bool       `json:"is_admin"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasActivePremium reports whether the user holds a paid plan that has not
// lapsed as of the given instant.
func (u *User) HasActivePremium(now time.Time) bool {
	if !PlanIsPremium(u.SubscriptionPlan) {
		return false
	}
	if u.SubscriptionEnds == nil {
		return false
	}
	return u.SubscriptionEnds.After(now)
}

// UserSession is a portal-issued login session. The token itself is a JWT
// handed to the client; only its hash is stored so sessions can be revoked.
type UserSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// IsValid reports whether the session is usable at the given instant.
func (s *UserSession) IsValid(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

// IdentityProfile is the profile returned by the external identity provider
// when a one-time session ID is exchanged.
type IdentityProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}
