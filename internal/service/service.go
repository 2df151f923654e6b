package service

import (
	"context"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
)

// EventPublisher is the subset of event.Producer the services use. Tests
// substitute a mock so no broker is needed.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
	PublishSubscriptionActivated(ctx context.Context, user *domain.User) error
	PublishPaymentRecorded(ctx context.Context, tx *domain.PaymentTransaction) error
}
