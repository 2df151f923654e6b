package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/httpclient"
)

// Provider talks to a hosted checkout API over HTTP. Requests carry a Bearer
// API key; webhook payloads are verified with an HMAC-SHA256 signature.
type Provider struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	http          *httpclient.Client
}

// Config holds the checkout provider connection settings.
type Config struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
}

// NewProvider creates a checkout provider client.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		http: httpclient.New(httpclient.Config{
			Timeout:         15 * time.Second,
			MaxRetries:      2,
			RetryWaitMin:    500 * time.Millisecond,
			RetryWaitMax:    3 * time.Second,
			MaxConnsPerHost: 20,
		}),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "checkout"
}

type sessionPayload struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

func (s *sessionPayload) toSession() *provider.Session {
	return &provider.Session{
		ID:            s.ID,
		URL:           s.URL,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		AmountTotal:   s.AmountTotal,
		Currency:      s.Currency,
		Metadata:      s.Metadata,
	}
}

// CreateSession opens a hosted checkout session.
func (p *Provider) CreateSession(ctx context.Context, input *provider.CreateSessionInput) (*provider.Session, error) {
	body, err := json.Marshal(map[string]any{
		"amount":      input.Amount,
		"currency":    input.Currency,
		"success_url": input.SuccessURL,
		"cancel_url":  input.CancelURL,
		"metadata":    input.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/checkout/sessions", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("create checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Unavailable("checkout provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("checkout provider returned %s", resp.Status)
	}

	var payload sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	return payload.toSession(), nil
}

// GetSession fetches the current state of a checkout session.
func (p *Provider) GetSession(ctx context.Context, sessionID string) (*provider.Session, error) {
	endpoint := p.baseURL + "/v1/checkout/sessions/" + url.PathEscape(sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Unavailable("checkout provider unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apperrors.NotFound("checkout session", sessionID)
	default:
		return nil, fmt.Errorf("checkout provider returned %s", resp.Status)
	}

	var payload sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	return payload.toSession(), nil
}

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		SessionID string `json:"session_id"`
	} `json:"data"`
}

// ParseWebhook verifies the HMAC-SHA256 signature and decodes the event.
func (p *Provider) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(p.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, apperrors.Unauthorized("invalid webhook signature")
	}

	var event webhookPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}
	if event.Data.SessionID == "" {
		return nil, apperrors.InvalidInput("webhook payload missing session ID")
	}

	return &provider.WebhookEvent{Type: event.Type, SessionID: event.Data.SessionID}, nil
}
