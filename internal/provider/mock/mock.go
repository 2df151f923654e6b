package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
)

// Provider is an in-memory checkout provider for development and testing.
// Sessions start open and unpaid; tests flip them with MarkPaid or MarkExpired.
type Provider struct {
	mu       sync.Mutex
	sessions map[string]*provider.Session
}

// NewProvider creates a new mock checkout provider.
func NewProvider() *Provider {
	return &Provider{sessions: make(map[string]*provider.Session)}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateSession opens an in-memory checkout session.
func (p *Provider) CreateSession(_ context.Context, input *provider.CreateSessionInput) (*provider.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := &provider.Session{
		ID:            "mock_cs_" + uuid.New().String(),
		URL:           "https://checkout.example.com/pay/" + uuid.New().String(),
		Status:        provider.SessionOpen,
		PaymentStatus: provider.PaymentUnpaid,
		AmountTotal:   input.Amount,
		Currency:      input.Currency,
		Metadata:      input.Metadata,
	}
	p.sessions[s.ID] = s
	return s, nil
}

// GetSession fetches the current state of a checkout session.
func (p *Provider) GetSession(_ context.Context, sessionID string) (*provider.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, apperrors.NotFound("checkout session", sessionID)
	}
	copied := *s
	return &copied, nil
}

// ParseWebhook decodes a mock webhook. The signature is ignored.
func (p *Provider) ParseWebhook(payload []byte, _ string) (*provider.WebhookEvent, error) {
	return &provider.WebhookEvent{Type: "checkout.session.completed", SessionID: string(payload)}, nil
}

// MarkPaid transitions a session to complete/paid.
func (p *Provider) MarkPaid(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[sessionID]; ok {
		s.Status = provider.SessionComplete
		s.PaymentStatus = provider.PaymentPaid
	}
}

// MarkExpired transitions a session to expired.
func (p *Provider) MarkExpired(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[sessionID]; ok {
		s.Status = provider.SessionExpired
	}
}
