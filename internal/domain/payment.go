package domain

import (
	"time"
)

// Payment transaction status constants. Paid and failed are terminal.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
	PaymentExpired = "expired"
)

// PaymentTransaction records one checkout attempt against the provider. The
// provider session ID is unique so a replayed confirmation can never apply
// the subscription twice.
type PaymentTransaction struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ProviderSessionID string    `json:"provider_session_id"`
	PlanID            string    `json:"plan_id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsTerminal returns true if the transaction can no longer change status.
func (t *PaymentTransaction) IsTerminal() bool {
	return t.Status == PaymentPaid || t.Status == PaymentFailed || t.Status == PaymentExpired
}

// ValidPaymentStatuses returns the set of recognized transaction statuses.
func ValidPaymentStatuses() []string {
	return []string{PaymentPending, PaymentPaid, PaymentFailed, PaymentExpired}
}

// IsValidPaymentStatus checks whether the given status string is recognized.
func IsValidPaymentStatus(status string) bool {
	for _, s := range ValidPaymentStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
