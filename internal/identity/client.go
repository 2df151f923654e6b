package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/httpclient"
)

// Exchanger resolves a one-time session ID from the login callback into the
// identity provider's profile for that login.
type Exchanger interface {
	Exchange(ctx context.Context, sessionID string) (*domain.IdentityProfile, error)
}

// Client talks to the external identity provider over HTTP. Calls go through
// a circuit breaker so a provider outage fails fast instead of piling up.
type Client struct {
	exchangeURL string
	http        *httpclient.BreakerClient
}

// NewClient creates an identity provider client for the given exchange endpoint.
func NewClient(exchangeURL string) *Client {
	base := httpclient.New(httpclient.Config{
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 20,
	})

	return &Client{
		exchangeURL: exchangeURL,
		http:        httpclient.NewBreakerClient(base, httpclient.DefaultBreakerConfig("identity")),
	}
}

// Exchange redeems the one-time session ID. The ID travels in a header, never
// in the URL, so it cannot leak through access logs. The provider invalidates
// it after first use, which makes a replayed callback fail here.
func (c *Client) Exchange(ctx context.Context, sessionID string) (*domain.IdentityProfile, error) {
	if sessionID == "" {
		return nil, apperrors.Unauthorized("missing session ID")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.exchangeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create exchange request: %w", err)
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Unavailable("identity provider unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Unauthorized("session ID rejected by identity provider")
	}

	var profile domain.IdentityProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode identity profile: %w", err)
	}
	if profile.Email == "" {
		return nil, apperrors.Unauthorized("identity profile missing email")
	}

	return &profile, nil
}
