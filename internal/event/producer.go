package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	pkgkafka "github.com/edricyan2022-wq/Wrestling-SITE/pkg/kafka"
)

// Kafka topic constants for portal domain events.
const (
	TopicUserRegistered        = "portal.user.registered"
	TopicSubscriptionActivated = "portal.subscription.activated"
	TopicPaymentRecorded       = "portal.payment.recorded"
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypePayment = "payment"
)

// Source identifier for events originating from the portal.
const SourcePortal = "portal"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SubscriptionActivatedData is the payload for a subscription.activated event.
type SubscriptionActivatedData struct {
	UserID    string `json:"user_id"`
	PlanID    string `json:"plan_id"`
	ExpiresAt string `json:"expires_at"`
}

// PaymentRecordedData is the payload for a payment.recorded event.
type PaymentRecordedData struct {
	TransactionID     string `json:"transaction_id"`
	UserID            string `json:"user_id"`
	ProviderSessionID string `json:"provider_session_id"`
	PlanID            string `json:"plan_id"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	Status            string `json:"status"`
}

// Producer publishes portal domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the portal.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourcePortal, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// PublishSubscriptionActivated publishes a subscription.activated event.
func (p *Producer) PublishSubscriptionActivated(ctx context.Context, user *domain.User) error {
	expires := ""
	if user.SubscriptionEnds != nil {
		expires = user.SubscriptionEnds.Format("2006-01-02T15:04:05Z07:00")
	}

	data := SubscriptionActivatedData{
		UserID:    user.ID,
		PlanID:    user.SubscriptionPlan,
		ExpiresAt: expires,
	}

	event, err := pkgkafka.NewEvent(TopicSubscriptionActivated, user.ID, AggregateTypeUser, SourcePortal, data)
	if err != nil {
		return fmt.Errorf("create subscription.activated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSubscriptionActivated, event); err != nil {
		return fmt.Errorf("publish subscription.activated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published subscription.activated event",
		slog.String("user_id", user.ID),
		slog.String("plan_id", user.SubscriptionPlan),
	)

	return nil
}

// PublishPaymentRecorded publishes a payment.recorded event.
func (p *Producer) PublishPaymentRecorded(ctx context.Context, tx *domain.PaymentTransaction) error {
	data := PaymentRecordedData{
		TransactionID:     tx.ID,
		UserID:            tx.UserID,
		ProviderSessionID: tx.ProviderSessionID,
		PlanID:            tx.PlanID,
		Amount:            tx.Amount,
		Currency:          tx.Currency,
		Status:            tx.Status,
	}

	event, err := pkgkafka.NewEvent(TopicPaymentRecorded, tx.ID, AggregateTypePayment, SourcePortal, data)
	if err != nil {
		return fmt.Errorf("create payment.recorded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPaymentRecorded, event); err != nil {
		return fmt.Errorf("publish payment.recorded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.recorded event",
		slog.String("transaction_id", tx.ID),
		slog.String("user_id", tx.UserID),
		slog.String("status", tx.Status),
	)

	return nil
}
