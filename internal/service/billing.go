package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/repository"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/pagination"
)

// BillingService implements checkout, payment confirmation, and history.
type BillingService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	cache       repository.SessionCache
	checkout    provider.Provider
	producer    EventPublisher
	logger      *slog.Logger
}

// NewBillingService creates a new billing service.
func NewBillingService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	cache repository.SessionCache,
	checkout provider.Provider,
	producer EventPublisher,
	logger *slog.Logger,
) *BillingService {
	return &BillingService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		cache:       cache,
		checkout:    checkout,
		producer:    producer,
		logger:      logger,
	}
}

// CheckoutResult holds the redirect target for a newly opened checkout.
type CheckoutResult struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Plans returns the subscription catalog.
func (s *BillingService) Plans() []domain.Plan {
	return domain.Plans()
}

// CreateCheckout opens a hosted checkout session for the given plan. The
// amount always comes from the server-side catalog, never from the client.
// origin is the portal's own base URL, used to build the return addresses.
func (s *BillingService) CreateCheckout(ctx context.Context, user *domain.User, planID, origin string) (*CheckoutResult, error) {
	plan, ok := domain.PlanByID(planID)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown plan %q", planID))
	}
	if plan.Amount <= 0 {
		return nil, apperrors.InvalidInput("plan is not purchasable")
	}

	origin = strings.TrimRight(origin, "/")

	session, err := s.checkout.CreateSession(ctx, &provider.CreateSessionInput{
		PlanID:     plan.ID,
		Amount:     plan.Amount,
		Currency:   plan.Currency,
		SuccessURL: origin + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  origin + "/pricing",
		Metadata: map[string]string{
			"user_id": user.ID,
			"plan_id": plan.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	now := time.Now().UTC()
	tx := &domain.PaymentTransaction{
		ID:                uuid.New().String(),
		UserID:            user.ID,
		ProviderSessionID: session.ID,
		PlanID:            plan.ID,
		Amount:            plan.Amount,
		Currency:          plan.Currency,
		Status:            domain.PaymentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.paymentRepo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	// Publish recording event (non-blocking on failure).
	if err := s.producer.PublishPaymentRecorded(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.recorded event",
			slog.String("transaction_id", tx.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("user_id", user.ID),
		slog.String("plan_id", plan.ID),
		slog.String("provider_session_id", session.ID),
	)

	return &CheckoutResult{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// PaymentStatusResult is the confirmation-poll response.
type PaymentStatusResult struct {
	Status        string `json:"status"`         // provider session status
	PaymentStatus string `json:"payment_status"` // paid or unpaid
}

// PaymentStatus reports the state of a checkout session, applying the
// subscription the first time a paid session is observed. A transaction that
// is already paid short-circuits without calling the provider, so repeated
// polls and replayed success-page visits are harmless.
func (s *BillingService) PaymentStatus(ctx context.Context, user *domain.User, sessionID string) (*PaymentStatusResult, error) {
	tx, err := s.paymentRepo.GetByProviderSessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("checkout session", sessionID)
		}
		return nil, fmt.Errorf("look up transaction: %w", err)
	}
	if tx.UserID != user.ID {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}

	if tx.Status == domain.PaymentPaid {
		return &PaymentStatusResult{Status: provider.SessionComplete, PaymentStatus: provider.PaymentPaid}, nil
	}

	session, err := s.checkout.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch checkout session: %w", err)
	}

	switch {
	case session.PaymentStatus == provider.PaymentPaid:
		if err := s.applyPayment(ctx, tx); err != nil {
			return nil, err
		}
	case session.Status == provider.SessionExpired:
		if err := s.paymentRepo.UpdateStatus(ctx, sessionID, domain.PaymentExpired); err != nil {
			return nil, fmt.Errorf("mark transaction expired: %w", err)
		}
	}

	return &PaymentStatusResult{Status: session.Status, PaymentStatus: session.PaymentStatus}, nil
}

// HandleWebhook processes a provider notification. Completed sessions apply
// the subscription through the same idempotent path as polling.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.checkout.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	if event.Type != "checkout.session.completed" {
		s.logger.DebugContext(ctx, "ignoring webhook event",
			slog.String("type", event.Type),
		)
		return nil
	}

	tx, err := s.paymentRepo.GetByProviderSessionID(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("checkout session", event.SessionID)
		}
		return fmt.Errorf("look up transaction: %w", err)
	}

	if tx.Status == domain.PaymentPaid {
		return nil
	}

	session, err := s.checkout.GetSession(ctx, event.SessionID)
	if err != nil {
		return fmt.Errorf("fetch checkout session: %w", err)
	}
	if session.PaymentStatus != provider.PaymentPaid {
		s.logger.WarnContext(ctx, "webhook for unpaid session ignored",
			slog.String("provider_session_id", event.SessionID),
		)
		return nil
	}

	return s.applyPayment(ctx, tx)
}

// ListTransactions returns a page of the user's payment history.
func (s *BillingService) ListTransactions(ctx context.Context, user *domain.User, params pagination.Params) (pagination.Result[domain.PaymentTransaction], error) {
	txs, total, err := s.paymentRepo.ListByUserID(ctx, user.ID, params.PerPage, params.Offset)
	if err != nil {
		return pagination.Result[domain.PaymentTransaction]{}, fmt.Errorf("list transactions: %w", err)
	}

	return pagination.NewResult(txs, total, params), nil
}

// applyPayment marks the transaction paid and activates the subscription.
// The paid status is written first; if activation fails midway, the next
// poll or webhook retries it without double-charging.
func (s *BillingService) applyPayment(ctx context.Context, tx *domain.PaymentTransaction) error {
	plan, ok := domain.PlanByID(tx.PlanID)
	if !ok {
		return fmt.Errorf("transaction %s references unknown plan %q", tx.ID, tx.PlanID)
	}

	if err := s.paymentRepo.UpdateStatus(ctx, tx.ProviderSessionID, domain.PaymentPaid); err != nil {
		return fmt.Errorf("mark transaction paid: %w", err)
	}
	tx.Status = domain.PaymentPaid

	user, err := s.userRepo.GetByID(ctx, tx.UserID)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}

	expiry := domain.PlanExpiry(plan, time.Now().UTC())
	user.SubscriptionPlan = plan.ID
	user.SubscriptionEnds = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	// Cached snapshots now carry a stale plan; evict them all.
	if err := s.cache.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to evict user session snapshots",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishSubscriptionActivated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish subscription.activated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishPaymentRecorded(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.recorded event",
			slog.String("transaction_id", tx.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "subscription activated",
		slog.String("user_id", user.ID),
		slog.String("plan_id", plan.ID),
		slog.Time("expires_at", expiry),
	)

	return nil
}
