package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAPI is a scriptable API double. Every field is guarded by mu so tests
// exercising concurrent loads stay race-free.
type fakeAPI struct {
	mu sync.Mutex

	identity      *Session
	identityErr   error
	identityCalls int

	exchangeSession *Session
	exchangeErr     error
	exchangeCalls   int
	exchangedTokens []string

	invalidateErr   error
	invalidateCalls int

	// statusQueue is consumed one entry per GetPaymentStatus call; when it
	// runs out the last entry repeats.
	statusQueue []string
	statusErr   error
	statusCalls int
}

func (f *fakeAPI) CurrentIdentity(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identityCalls++
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	if f.identity == nil {
		return nil, ErrUnauthorized
	}
	s := *f.identity
	return &s, nil
}

func (f *fakeAPI) ExchangeLoginToken(ctx context.Context, token string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	f.exchangedTokens = append(f.exchangedTokens, token)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	s := *f.exchangeSession
	return &s, nil
}

func (f *fakeAPI) InvalidateSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidateCalls++
	return f.invalidateErr
}

func (f *fakeAPI) CreateCheckout(ctx context.Context, planID, origin string) (*Checkout, error) {
	return &Checkout{Ref: "cs_test", RedirectURL: "https://pay.example.com/cs_test"}, nil
}

func (f *fakeAPI) GetPaymentStatus(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return "", f.statusErr
	}
	if len(f.statusQueue) == 0 {
		return PaymentStatusPending, nil
	}
	status := f.statusQueue[0]
	if len(f.statusQueue) > 1 {
		f.statusQueue = f.statusQueue[1:]
	}
	return status, nil
}

func (f *fakeAPI) ListContent(ctx context.Context, category string) ([]ContentItem, error) {
	return nil, errors.New("not scripted")
}

// fakeNavigator records navigation calls.
type fakeNavigator struct {
	mu       sync.Mutex
	assigned []string
	replaced []string
}

func (n *fakeNavigator) Assign(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, url)
}

func (n *fakeNavigator) ReplaceLocation(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replaced = append(n.replaced, url)
}

// immediateClock fires every scheduled delay at once.
type immediateClock struct {
	mu    sync.Mutex
	waits int
}

func (c *immediateClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// cancelingClock cancels the given context instead of firing, simulating a
// view teardown while a poll is waiting on its timer.
type cancelingClock struct {
	cancel context.CancelFunc
}

func (c *cancelingClock) After(d time.Duration) <-chan time.Time {
	c.cancel()
	return make(chan time.Time)
}
