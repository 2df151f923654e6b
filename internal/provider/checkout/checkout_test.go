package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewProvider(Config{BaseURL: srv.URL, APIKey: "sk_test_123", WebhookSecret: "whsec_test"})
}

func TestCreateSession(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1999), body["amount"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "cs_123",
			"url":            "https://pay.example.com/cs_123",
			"status":         "open",
			"payment_status": "unpaid",
			"amount_total":   1999,
			"currency":       "usd",
		})
	})

	s, err := p.CreateSession(context.Background(), &provider.CreateSessionInput{
		PlanID:     "monthly",
		Amount:     1999,
		Currency:   "usd",
		SuccessURL: "https://portal.example.com/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://portal.example.com/pricing",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", s.ID)
	assert.Equal(t, provider.SessionOpen, s.Status)
	assert.Equal(t, "https://pay.example.com/cs_123", s.URL)
}

func TestGetSession_NotFound(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := p.GetSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetSession_Paid(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "cs_123",
			"status":         "complete",
			"payment_status": "paid",
			"amount_total":   1999,
			"currency":       "usd",
			"metadata":       map[string]string{"plan_id": "monthly"},
		})
	})

	s, err := p.GetSession(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, provider.PaymentPaid, s.PaymentStatus)
	assert.Equal(t, "monthly", s.Metadata["plan_id"])
}

func TestParseWebhook(t *testing.T) {
	p := NewProvider(Config{WebhookSecret: "whsec_test"})

	payload := []byte(`{"type":"checkout.session.completed","data":{"session_id":"cs_123"}}`)
	mac := hmac.New(sha256.New, []byte("whsec_test"))
	mac.Write(payload)
	sig := hex.EncodeToString(mac.Sum(nil))

	event, err := p.ParseWebhook(payload, sig)
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, "cs_123", event.SessionID)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	p := NewProvider(Config{WebhookSecret: "whsec_test"})

	_, err := p.ParseWebhook([]byte(`{}`), "deadbeef")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}
