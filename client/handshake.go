package client

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

// callbackPath is the fixed return address path registered with the
// identity provider. Provider-side allow-listing depends on exact matching,
// so no alternate address is ever substituted.
const callbackPath = "/auth/callback"

// fragmentTokenParam is the parameter carrying the one-time token in the
// post-redirect URL fragment. The provider uses the fragment rather than
// the query string so the token is never sent in a request line.
const fragmentTokenParam = "session_id"

// LoginOutcome is the result of CompleteLogin.
type LoginOutcome int

const (
	// LoginNoToken means the arrival carried no token: this was not an auth
	// return, and the caller should route to the default landing surface.
	LoginNoToken LoginOutcome = iota

	// LoginCompleted means the token was exchanged and the store now holds
	// the authenticated session.
	LoginCompleted

	// LoginFailed means the exchange was attempted and rejected.
	LoginFailed

	// LoginAlreadyHandled means this token's exchange already ran; the
	// duplicate invocation did nothing.
	LoginAlreadyHandled
)

// Navigator abstracts the hosting environment's navigation so the handshake
// can be driven by a browser shell or tested headlessly.
type Navigator interface {
	// Assign performs a full navigation to the address.
	Assign(url string)

	// ReplaceLocation rewrites the current address without adding a history
	// entry, so reloading or sharing the page cannot replay a token.
	ReplaceLocation(url string)
}

// AuthHandshake completes a redirect-based login against a single canonical
// authorization endpoint.
type AuthHandshake struct {
	authEndpoint string
	origin       string
	landingPath  string
	api          API
	store        *SessionStore
	nav          Navigator
	logger       *slog.Logger

	mu      sync.Mutex
	handled map[string]struct{}
}

// NewAuthHandshake creates a handshake bound to the given authorization
// endpoint and application origin. landingPath is where a completed login
// navigates to.
func NewAuthHandshake(authEndpoint, origin, landingPath string, api API, store *SessionStore, nav Navigator, logger *slog.Logger) *AuthHandshake {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandshake{
		authEndpoint: authEndpoint,
		origin:       strings.TrimRight(origin, "/"),
		landingPath:  landingPath,
		api:          api,
		store:        store,
		nav:          nav,
		logger:       logger,
		handled:      make(map[string]struct{}),
	}
}

// BeginLogin navigates to the authorization endpoint with this
// application's callback address as the single return parameter. It is a
// terminal action for the current page lifecycle; control returns via
// CompleteLogin after the provider redirects back.
func (h *AuthHandshake) BeginLogin() {
	target, err := url.Parse(h.authEndpoint)
	if err != nil {
		h.logger.Error("invalid authorization endpoint",
			slog.String("endpoint", h.authEndpoint),
		)
		return
	}

	q := target.Query()
	q.Set("redirect", h.origin+callbackPath)
	target.RawQuery = q.Encode()

	h.nav.Assign(target.String())
}

// CompleteLogin handles arrival at the callback address. rawFragment is the
// URL fragment, with or without its leading "#". A missing token is not an
// error: it signals the arrival was not an auth return. A present token is
// exchanged at most once, even if the hosting environment invokes this
// twice in quick succession.
func (h *AuthHandshake) CompleteLogin(ctx context.Context, rawFragment string) LoginOutcome {
	token := extractFragmentToken(rawFragment)
	if token == "" {
		return LoginNoToken
	}

	h.mu.Lock()
	if _, dup := h.handled[token]; dup {
		h.mu.Unlock()
		return LoginAlreadyHandled
	}
	h.handled[token] = struct{}{}
	h.mu.Unlock()

	session, err := h.api.ExchangeLoginToken(ctx, token)
	if err != nil {
		h.logger.WarnContext(ctx, "login token exchange failed",
			slog.String("error", err.Error()),
		)
		return LoginFailed
	}

	h.store.Replace(*session)

	// Erase the token from the visible address before moving on.
	h.nav.ReplaceLocation(h.origin + callbackPath)
	h.nav.Assign(h.origin + h.landingPath)

	return LoginCompleted
}

// extractFragmentToken pulls the one-time token out of a URL fragment.
func extractFragmentToken(rawFragment string) string {
	fragment := strings.TrimPrefix(rawFragment, "#")
	if fragment == "" {
		return ""
	}
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return ""
	}
	return values.Get(fragmentTokenParam)
}
