package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/httpclient"
)

// RESTClient implements API against the portal's HTTP endpoints. The
// underlying HTTP client carries a cookie jar so the session cookie set by
// the exchange endpoint rides along on subsequent calls.
type RESTClient struct {
	baseURL string
	origin  string
	http    *httpclient.Client
}

// NewRESTClient creates an API client for the portal at baseURL. origin is
// this application's own address, sent when opening a checkout so the
// provider can redirect back.
func NewRESTClient(baseURL, origin string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		origin:  strings.TrimRight(origin, "/"),
		http: httpclient.New(httpclient.Config{
			Timeout:         15 * time.Second,
			MaxRetries:      2,
			RetryWaitMin:    500 * time.Millisecond,
			RetryWaitMax:    3 * time.Second,
			MaxConnsPerHost: 10,
			WithCookieJar:   true,
		}),
	}
}

type sessionEnvelope struct {
	Data struct {
		User *Session `json:"user"`
	} `json:"data"`
}

type checkoutEnvelope struct {
	Data struct {
		SessionID   string `json:"session_id"`
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

type paymentStatusEnvelope struct {
	Data struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	} `json:"data"`
}

type contentEnvelope struct {
	Data []ContentItem `json:"data"`
}

// CurrentIdentity resolves the session cookie into a session.
func (c *RESTClient) CurrentIdentity(ctx context.Context) (*Session, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/auth/me")
	if err != nil {
		return nil, fmt.Errorf("fetch current identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch current identity: unexpected status %d", resp.StatusCode)
	}

	var envelope sessionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if envelope.Data.User == nil {
		return nil, ErrUnauthorized
	}
	return envelope.Data.User, nil
}

// ExchangeLoginToken redeems a one-time token for a portal session. The
// session cookie lands in the jar as a side effect.
func (c *RESTClient) ExchangeLoginToken(ctx context.Context, token string) (*Session, error) {
	body, _ := json.Marshal(map[string]string{"session_id": token})

	resp, err := c.http.Post(ctx, c.baseURL+"/api/auth/session", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("exchange login token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange login token: unexpected status %d", resp.StatusCode)
	}

	var envelope sessionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode exchange response: %w", err)
	}
	if envelope.Data.User == nil {
		return nil, fmt.Errorf("exchange login token: empty user in response")
	}
	return envelope.Data.User, nil
}

// InvalidateSession revokes the server-side session.
func (c *RESTClient) InvalidateSession(ctx context.Context) error {
	resp, err := c.http.Post(ctx, c.baseURL+"/api/auth/logout", "application/json", nil)
	if err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invalidate session: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// CreateCheckout opens a checkout session for the plan.
func (c *RESTClient) CreateCheckout(ctx context.Context, planID, origin string) (*Checkout, error) {
	if origin == "" {
		origin = c.origin
	}
	body, _ := json.Marshal(map[string]string{"plan_id": planID, "origin": origin})

	resp, err := c.http.Post(ctx, c.baseURL+"/api/payments/create-checkout", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create checkout: unexpected status %d", resp.StatusCode)
	}

	var envelope checkoutEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}
	return &Checkout{
		Ref:         envelope.Data.SessionID,
		RedirectURL: envelope.Data.CheckoutURL,
	}, nil
}

// GetPaymentStatus reports the payment state for a checkout reference.
func (c *RESTClient) GetPaymentStatus(ctx context.Context, ref string) (string, error) {
	resp, err := c.http.Get(ctx, c.baseURL+"/api/payments/status/"+url.PathEscape(ref))
	if err != nil {
		return "", fmt.Errorf("fetch payment status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch payment status: unexpected status %d", resp.StatusCode)
	}

	var envelope paymentStatusEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode payment status: %w", err)
	}

	switch {
	case envelope.Data.PaymentStatus == "paid":
		return PaymentStatusPaid, nil
	case envelope.Data.Status == "expired":
		return PaymentStatusExpired, nil
	default:
		return PaymentStatusPending, nil
	}
}

// ListContent returns the catalog as visible to the current caller.
func (c *RESTClient) ListContent(ctx context.Context, category string) ([]ContentItem, error) {
	target := c.baseURL + "/api/videos"
	if category != "" {
		target += "?category=" + url.QueryEscape(category)
	}

	resp, err := c.http.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list content: unexpected status %d", resp.StatusCode)
	}

	var envelope contentEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode content response: %w", err)
	}
	return envelope.Data, nil
}
