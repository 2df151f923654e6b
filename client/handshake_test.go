package client

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAuthEndpoint = "https://auth.example.com/login"
	testOrigin       = "https://portal.example.com"
)

func newHandshake(api API, store *SessionStore, nav Navigator) *AuthHandshake {
	return NewAuthHandshake(testAuthEndpoint, testOrigin, "/videos", api, store, nav, testLogger())
}

func TestBeginLogin_SingleRedirectParameter(t *testing.T) {
	api := &fakeAPI{}
	nav := &fakeNavigator{}
	h := newHandshake(api, NewSessionStore(api, testLogger()), nav)

	h.BeginLogin()

	require.Len(t, nav.assigned, 1)
	target, err := url.Parse(nav.assigned[0])
	require.NoError(t, err)
	assert.Equal(t, "auth.example.com", target.Host)
	assert.Equal(t, "/login", target.Path)

	q := target.Query()
	assert.Len(t, q, 1, "exactly one parameter, the return address")
	assert.Equal(t, testOrigin+"/auth/callback", q.Get("redirect"))
}

func TestCompleteLogin_NoTokenIsNotAnError(t *testing.T) {
	api := &fakeAPI{}
	nav := &fakeNavigator{}
	h := newHandshake(api, NewSessionStore(api, testLogger()), nav)

	assert.Equal(t, LoginNoToken, h.CompleteLogin(context.Background(), ""))
	assert.Equal(t, LoginNoToken, h.CompleteLogin(context.Background(), "#"))
	assert.Equal(t, LoginNoToken, h.CompleteLogin(context.Background(), "#other=value"))
	assert.Equal(t, 0, api.exchangeCalls)
}

func TestCompleteLogin_ExchangesAndPopulatesStore(t *testing.T) {
	api := &fakeAPI{exchangeSession: premiumSession()}
	nav := &fakeNavigator{}
	store := NewSessionStore(api, testLogger())
	h := newHandshake(api, store, nav)

	outcome := h.CompleteLogin(context.Background(), "#session_id=one-time-token")

	assert.Equal(t, LoginCompleted, outcome)
	assert.Equal(t, 1, api.exchangeCalls)
	assert.Equal(t, []string{"one-time-token"}, api.exchangedTokens)
	assert.Equal(t, "u-premium", store.Current().UserID)

	// Token erased from the visible address without a history push, then
	// navigation to the landing surface.
	require.Len(t, nav.replaced, 1)
	assert.Equal(t, testOrigin+"/auth/callback", nav.replaced[0])
	require.Len(t, nav.assigned, 1)
	assert.Equal(t, testOrigin+"/videos", nav.assigned[0])
}

func TestCompleteLogin_FragmentWithoutHashPrefix(t *testing.T) {
	api := &fakeAPI{exchangeSession: premiumSession()}
	nav := &fakeNavigator{}
	h := newHandshake(api, NewSessionStore(api, testLogger()), nav)

	assert.Equal(t, LoginCompleted, h.CompleteLogin(context.Background(), "session_id=tok&state=xyz"))
	assert.Equal(t, []string{"tok"}, api.exchangedTokens)
}

func TestCompleteLogin_DoubleInvocationExchangesOnce(t *testing.T) {
	api := &fakeAPI{exchangeSession: premiumSession()}
	nav := &fakeNavigator{}
	h := newHandshake(api, NewSessionStore(api, testLogger()), nav)

	first := h.CompleteLogin(context.Background(), "#session_id=dup-token")
	second := h.CompleteLogin(context.Background(), "#session_id=dup-token")

	assert.Equal(t, LoginCompleted, first)
	assert.Equal(t, LoginAlreadyHandled, second)
	assert.Equal(t, 1, api.exchangeCalls)
}

func TestCompleteLogin_ConcurrentDoubleInvocationExchangesOnce(t *testing.T) {
	api := &fakeAPI{exchangeSession: premiumSession()}
	nav := &fakeNavigator{}
	h := newHandshake(api, NewSessionStore(api, testLogger()), nav)

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			h.CompleteLogin(context.Background(), "#session_id=racy-token")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, api.exchangeCalls)
}

func TestCompleteLogin_ExchangeFailure(t *testing.T) {
	api := &fakeAPI{exchangeErr: errors.New("token rejected")}
	nav := &fakeNavigator{}
	store := NewSessionStore(api, testLogger())
	h := newHandshake(api, store, nav)

	outcome := h.CompleteLogin(context.Background(), "#session_id=bad-token")

	assert.Equal(t, LoginFailed, outcome)
	assert.True(t, store.Current().IsAnonymous())
	assert.Empty(t, nav.assigned)
}
