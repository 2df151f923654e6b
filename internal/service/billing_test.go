package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider"
	checkoutmock "github.com/edricyan2022-wq/Wrestling-SITE/internal/provider/mock"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/pagination"
)

type billingFixture struct {
	paymentRepo *mockPaymentRepository
	userRepo    *mockUserRepository
	cache       *mockSessionCache
	checkout    *mockCheckoutProvider
	producer    *mockEventPublisher
	svc         *BillingService
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		paymentRepo: new(mockPaymentRepository),
		userRepo:    new(mockUserRepository),
		cache:       new(mockSessionCache),
		checkout:    new(mockCheckoutProvider),
		producer:    new(mockEventPublisher),
	}
	f.svc = NewBillingService(f.paymentRepo, f.userRepo, f.cache, f.checkout, f.producer, newTestLogger())
	return f
}

func pendingTransaction() *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:                "pt-1",
		UserID:            "u-free",
		ProviderSessionID: "cs_123",
		PlanID:            domain.PlanMonthly,
		Amount:            1999,
		Currency:          "usd",
		Status:            domain.PaymentPending,
	}
}

func TestCreateCheckout_Success(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	user := freeUser()

	f.checkout.On("CreateSession", ctx, mock.MatchedBy(func(in *provider.CreateSessionInput) bool {
		return in.PlanID == domain.PlanMonthly &&
			in.Amount == 1999 &&
			in.SuccessURL == "https://portal.example.com/payment/success?session_id={CHECKOUT_SESSION_ID}" &&
			in.CancelURL == "https://portal.example.com/pricing" &&
			in.Metadata["user_id"] == user.ID
	})).Return(&provider.Session{
		ID:     "cs_123",
		URL:    "https://pay.example.com/cs_123",
		Status: provider.SessionOpen,
	}, nil)
	f.paymentRepo.On("Create", ctx, mock.MatchedBy(func(tx *domain.PaymentTransaction) bool {
		return tx.Status == domain.PaymentPending && tx.ProviderSessionID == "cs_123"
	})).Return(nil)
	f.producer.On("PublishPaymentRecorded", ctx, mock.Anything).Return(nil)

	result, err := f.svc.CreateCheckout(ctx, user, domain.PlanMonthly, "https://portal.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "cs_123", result.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_123", result.CheckoutURL)

	f.checkout.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
}

func TestCreateCheckout_UnknownPlan(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.CreateCheckout(context.Background(), freeUser(), "lifetime", "https://portal.example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	f.checkout.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestCreateCheckout_FreePlanNotPurchasable(t *testing.T) {
	f := newBillingFixture()

	_, err := f.svc.CreateCheckout(context.Background(), freeUser(), domain.PlanFree, "https://portal.example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	f.checkout.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestPaymentStatus_AlreadyPaidSkipsProvider(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	paid := pendingTransaction()
	paid.Status = domain.PaymentPaid

	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_123").Return(paid, nil)

	result, err := f.svc.PaymentStatus(ctx, freeUser(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, provider.PaymentPaid, result.PaymentStatus)

	f.checkout.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPaymentStatus_PaidActivatesSubscriptionOnce(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	user := freeUser()

	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_123").Return(pendingTransaction(), nil)
	f.checkout.On("GetSession", ctx, "cs_123").Return(&provider.Session{
		ID:            "cs_123",
		Status:        provider.SessionComplete,
		PaymentStatus: provider.PaymentPaid,
	}, nil)
	f.paymentRepo.On("UpdateStatus", ctx, "cs_123", domain.PaymentPaid).Return(nil)
	f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	f.userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.SubscriptionPlan == domain.PlanMonthly && u.SubscriptionEnds != nil
	})).Return(nil)
	f.cache.On("DeleteByUserID", ctx, user.ID).Return(nil)
	f.producer.On("PublishSubscriptionActivated", ctx, mock.Anything).Return(nil)
	f.producer.On("PublishPaymentRecorded", ctx, mock.Anything).Return(nil)

	result, err := f.svc.PaymentStatus(ctx, user, "cs_123")
	require.NoError(t, err)
	assert.Equal(t, provider.PaymentPaid, result.PaymentStatus)

	f.paymentRepo.AssertExpectations(t)
	f.userRepo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func TestPaymentStatus_UnpaidLeavesTransactionPending(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_123").Return(pendingTransaction(), nil)
	f.checkout.On("GetSession", ctx, "cs_123").Return(&provider.Session{
		ID:            "cs_123",
		Status:        provider.SessionOpen,
		PaymentStatus: provider.PaymentUnpaid,
	}, nil)

	result, err := f.svc.PaymentStatus(ctx, freeUser(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, provider.SessionOpen, result.Status)
	assert.Equal(t, provider.PaymentUnpaid, result.PaymentStatus)

	f.paymentRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPaymentStatus_ExpiredSessionMarksTransaction(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_123").Return(pendingTransaction(), nil)
	f.checkout.On("GetSession", ctx, "cs_123").Return(&provider.Session{
		ID:            "cs_123",
		Status:        provider.SessionExpired,
		PaymentStatus: provider.PaymentUnpaid,
	}, nil)
	f.paymentRepo.On("UpdateStatus", ctx, "cs_123", domain.PaymentExpired).Return(nil)

	result, err := f.svc.PaymentStatus(ctx, freeUser(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, provider.SessionExpired, result.Status)
	f.paymentRepo.AssertExpectations(t)
}

func TestPaymentStatus_OtherUsersSessionHidden(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_123").Return(pendingTransaction(), nil)

	other := premiumUser(t)
	_, err := f.svc.PaymentStatus(ctx, other, "cs_123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	f.checkout.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
}

func TestPaymentStatus_UnknownSession(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_missing").Return(nil, apperrors.ErrNotFound)

	_, err := f.svc.PaymentStatus(ctx, freeUser(), "cs_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestHandleWebhook_CompletedSessionActivates(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	user := freeUser()

	payload := []byte(`{"type":"checkout.session.completed","data":{"session_id":"cs_123"}}`)

	f.checkout.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{
		Type:      "checkout.session.completed",
		SessionID: "cs_123",
	}, nil)
	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_123").Return(pendingTransaction(), nil)
	f.checkout.On("GetSession", ctx, "cs_123").Return(&provider.Session{
		ID:            "cs_123",
		Status:        provider.SessionComplete,
		PaymentStatus: provider.PaymentPaid,
	}, nil)
	f.paymentRepo.On("UpdateStatus", ctx, "cs_123", domain.PaymentPaid).Return(nil)
	f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	f.userRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.cache.On("DeleteByUserID", ctx, user.ID).Return(nil)
	f.producer.On("PublishSubscriptionActivated", ctx, mock.Anything).Return(nil)
	f.producer.On("PublishPaymentRecorded", ctx, mock.Anything).Return(nil)

	err := f.svc.HandleWebhook(ctx, payload, "sig")
	require.NoError(t, err)
	f.userRepo.AssertExpectations(t)
}

func TestHandleWebhook_ReplayIsNoOp(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	paid := pendingTransaction()
	paid.Status = domain.PaymentPaid

	payload := []byte(`{"type":"checkout.session.completed","data":{"session_id":"cs_123"}}`)

	f.checkout.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{
		Type:      "checkout.session.completed",
		SessionID: "cs_123",
	}, nil)
	f.paymentRepo.On("GetByProviderSessionID", ctx, "cs_123").Return(paid, nil)

	err := f.svc.HandleWebhook(ctx, payload, "sig")
	require.NoError(t, err)

	f.checkout.AssertNotCalled(t, "GetSession", mock.Anything, mock.Anything)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestHandleWebhook_IgnoresOtherEventTypes(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()

	payload := []byte(`{"type":"checkout.session.created","data":{"session_id":"cs_123"}}`)

	f.checkout.On("ParseWebhook", payload, "sig").Return(&provider.WebhookEvent{
		Type:      "checkout.session.created",
		SessionID: "cs_123",
	}, nil)

	err := f.svc.HandleWebhook(ctx, payload, "sig")
	require.NoError(t, err)
	f.paymentRepo.AssertNotCalled(t, "GetByProviderSessionID", mock.Anything, mock.Anything)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	f := newBillingFixture()

	f.checkout.On("ParseWebhook", mock.Anything, "bad-sig").Return(nil, apperrors.Unauthorized("invalid webhook signature"))

	err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), "bad-sig")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestListTransactions(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	user := freeUser()

	params := pagination.Params{Page: 1, PerPage: 25, Offset: 0}
	f.paymentRepo.On("ListByUserID", ctx, user.ID, 25, 0).Return([]domain.PaymentTransaction{*pendingTransaction()}, 1, nil)

	result, err := f.svc.ListTransactions(ctx, user, params)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "cs_123", result.Data[0].ProviderSessionID)
}

// Drives the full checkout flow against the in-memory provider used for
// local development, rather than a stubbed one.
func TestBillingFlow_AgainstInMemoryProvider(t *testing.T) {
	f := newBillingFixture()
	checkout := checkoutmock.NewProvider()
	f.svc = NewBillingService(f.paymentRepo, f.userRepo, f.cache, checkout, f.producer, newTestLogger())
	ctx := context.Background()
	user := freeUser()

	var created *domain.PaymentTransaction
	f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*domain.PaymentTransaction")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.PaymentTransaction)
		}).Return(nil)
	f.producer.On("PublishPaymentRecorded", ctx, mock.Anything).Return(nil)

	result, err := f.svc.CreateCheckout(ctx, user, domain.PlanMonthly, "https://portal.example.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, result.SessionID, created.ProviderSessionID)
	assert.NotEmpty(t, result.CheckoutURL)

	f.paymentRepo.On("GetByProviderSessionID", ctx, result.SessionID).Return(created, nil)

	status, err := f.svc.PaymentStatus(ctx, user, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, provider.PaymentUnpaid, status.PaymentStatus)
	f.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	checkout.MarkPaid(result.SessionID)
	f.paymentRepo.On("UpdateStatus", ctx, result.SessionID, domain.PaymentPaid).Return(nil)
	f.userRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	f.userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.SubscriptionPlan == domain.PlanMonthly
	})).Return(nil)
	f.cache.On("DeleteByUserID", ctx, user.ID).Return(nil)
	f.producer.On("PublishSubscriptionActivated", ctx, mock.Anything).Return(nil)

	status, err = f.svc.PaymentStatus(ctx, user, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, provider.PaymentPaid, status.PaymentStatus)
	f.userRepo.AssertExpectations(t)
}

func TestPlans_CatalogExposed(t *testing.T) {
	f := newBillingFixture()

	plans := f.svc.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, domain.PlanFree, plans[0].ID)
}
