package domain

import "time"

// Subscription plan identifiers.
const (
	PlanFree    = "free"
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// Plan describes a subscription tier offered by the portal.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Amount   int64    `json:"amount"`
	Currency string   `json:"currency"`
	Duration int      `json:"duration_days"`
	Features []string `json:"features"`
}

// Plans returns the catalog of subscription tiers. Amounts are in cents;
// they are fixed server-side and never accepted from the client.
func Plans() []Plan {
	return []Plan{
		{
			ID:       PlanFree,
			Name:     "Free",
			Amount:   0,
			Currency: "usd",
			Duration: 0,
			Features: []string{"Free videos", "Community updates"},
		},
		{
			ID:       PlanMonthly,
			Name:     "Monthly",
			Amount:   1999,
			Currency: "usd",
			Duration: 30,
			Features: []string{"All premium videos", "New drops every week", "Cancel anytime"},
		},
		{
			ID:       PlanAnnual,
			Name:     "Annual",
			Amount:   14999,
			Currency: "usd",
			Duration: 365,
			Features: []string{"All premium videos", "New drops every week", "Two months free"},
		},
	}
}

// PlanByID looks up a plan in the catalog.
func PlanByID(id string) (Plan, bool) {
	for _, p := range Plans() {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PlanIsPremium reports whether the plan grants access to premium content.
func PlanIsPremium(id string) bool {
	return id == PlanMonthly || id == PlanAnnual
}

// PlanExpiry returns the subscription end time for a plan purchased at the
// given instant. The zero time is returned for non-expiring plans.
func PlanExpiry(p Plan, purchasedAt time.Time) time.Time {
	if p.Duration <= 0 {
		return time.Time{}
	}
	return purchasedAt.Add(time.Duration(p.Duration) * 24 * time.Hour)
}
