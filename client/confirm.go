package client

import (
	"context"
	"log/slog"
	"time"
)

// PollState is a PaymentConfirmationMachine state. Checking is the only
// non-terminal state; there are no transitions out of a terminal state.
type PollState int

const (
	// PollChecking means confirmation is still in progress.
	PollChecking PollState = iota

	// PollSuccess means the provider confirmed payment and the session
	// store refresh has completed.
	PollSuccess

	// PollExpired means the checkout session expired before payment.
	PollExpired

	// PollError means the arrival was malformed or the provider was
	// unreachable. Infrastructure failure is actionable, not transient,
	// so it is never retried automatically.
	PollError

	// PollTimeout means the attempt budget was exhausted while the
	// provider still reported a non-terminal status.
	PollTimeout
)

func (s PollState) String() string {
	switch s {
	case PollChecking:
		return "checking"
	case PollSuccess:
		return "success"
	case PollExpired:
		return "expired"
	case PollError:
		return "error"
	case PollTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state has no outgoing transitions.
func (s PollState) Terminal() bool {
	return s != PollChecking
}

const (
	// maxPollAttempts bounds confirmation polling.
	maxPollAttempts = 5

	// pollInterval is the fixed delay between polls. Linear rather than
	// exponential: expected confirmation latency is small and bounded by
	// the provider's SLA.
	pollInterval = 2 * time.Second
)

// Clock schedules the delay between polls. Tests inject a fake to advance
// time deterministically.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// PaymentConfirmationMachine turns an asynchronous provider-confirmed
// payment into a terminal outcome without blocking indefinitely. One
// instance serves one confirmation view for one checkout reference.
type PaymentConfirmationMachine struct {
	api    API
	store  *SessionStore
	clock  Clock
	logger *slog.Logger

	state        PollState
	onTransition func(PollState)
}

// NewPaymentConfirmationMachine creates a machine in the Checking state.
// onTransition, if non-nil, is invoked on every state change.
func NewPaymentConfirmationMachine(api API, store *SessionStore, onTransition func(PollState)) *PaymentConfirmationMachine {
	return &PaymentConfirmationMachine{
		api:          api,
		store:        store,
		clock:        realClock{},
		logger:       slog.Default(),
		state:        PollChecking,
		onTransition: onTransition,
	}
}

// WithClock substitutes the scheduling clock.
func (m *PaymentConfirmationMachine) WithClock(clock Clock) *PaymentConfirmationMachine {
	m.clock = clock
	return m
}

// WithLogger substitutes the logger.
func (m *PaymentConfirmationMachine) WithLogger(logger *slog.Logger) *PaymentConfirmationMachine {
	m.logger = logger
	return m
}

// State returns the current state.
func (m *PaymentConfirmationMachine) State() PollState {
	return m.state
}

func (m *PaymentConfirmationMachine) transition(state PollState) PollState {
	m.state = state
	if m.onTransition != nil {
		m.onTransition(state)
	}
	return state
}

// Run polls the payment status for checkoutRef until a terminal state is
// reached or ctx is canceled. Canceling ctx (view teardown) abandons the
// poll without mutating the session store; the machine stays in Checking.
//
// An empty checkoutRef is a malformed arrival (e.g. the user navigated to
// the confirmation page manually) and resolves to Error with zero
// collaborator calls. Calling Run on a machine already in a terminal state
// returns that state without polling.
func (m *PaymentConfirmationMachine) Run(ctx context.Context, checkoutRef string) PollState {
	if m.state.Terminal() {
		return m.state
	}
	if checkoutRef == "" {
		return m.transition(PollError)
	}

	for attempt := 0; attempt < maxPollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return m.state
			case <-m.clock.After(pollInterval):
			}
		}

		status, err := m.api.GetPaymentStatus(ctx, checkoutRef)
		if err != nil {
			if ctx.Err() != nil {
				return m.state
			}
			m.logger.WarnContext(ctx, "payment status check failed",
				slog.String("checkout_ref", checkoutRef),
				slog.String("error", err.Error()),
			)
			return m.transition(PollError)
		}

		switch status {
		case PaymentStatusPaid:
			if ctx.Err() != nil {
				return m.state
			}
			// Success is not visible to the access gate until the
			// subscription snapshot is refreshed.
			if err := m.store.Load(ctx); err != nil {
				m.logger.WarnContext(ctx, "session refresh after payment failed",
					slog.String("error", err.Error()),
				)
			}
			return m.transition(PollSuccess)
		case PaymentStatusExpired:
			return m.transition(PollExpired)
		}
		// Pending or any other non-terminal status: keep polling.
	}

	return m.transition(PollTimeout)
}
