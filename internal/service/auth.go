package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/auth"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/identity"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/repository"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
)

// snapshotTTL bounds how stale a cached user snapshot can get. Subscription
// changes evict explicitly, so the TTL is only a backstop.
const snapshotTTL = 15 * time.Minute

// AuthSession is the result of a successful login exchange.
type AuthSession struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService implements login, session resolution, and logout.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cache       repository.SessionCache
	identity    identity.Exchanger
	tokens      *auth.TokenManager
	producer    EventPublisher
	adminEmail  string
	logger      *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	cache repository.SessionCache,
	identityClient identity.Exchanger,
	tokens *auth.TokenManager,
	producer EventPublisher,
	adminEmail string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cache:       cache,
		identity:    identityClient,
		tokens:      tokens,
		producer:    producer,
		adminEmail:  adminEmail,
		logger:      logger,
	}
}

// ExchangeSession redeems a one-time session ID from the login callback,
// provisioning the account on first login, and returns a portal session.
func (s *AuthService) ExchangeSession(ctx context.Context, oneTimeSessionID string) (*AuthSession, error) {
	profile, err := s.identity.Exchange(ctx, oneTimeSessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Keep the profile fields fresh on every login.
		if user.Name != profile.Name || user.Picture != profile.Picture {
			user.Name = profile.Name
			user.Picture = profile.Picture
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("update user profile: %w", err)
			}
		}
	case errors.Is(err, apperrors.ErrNotFound):
		now := time.Now().UTC()
		user = &domain.User{
			ID:               uuid.New().String(),
			Email:            profile.Email,
			Name:             profile.Name,
			Picture:          profile.Picture,
			SubscriptionPlan: domain.PlanFree,
			IsAdmin:          s.adminEmail != "" && profile.Email == s.adminEmail,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}

		// Publish registration event (non-blocking on failure).
		if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.registered event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	default:
		return nil, fmt.Errorf("look up user: %w", err)
	}

	token, expiresAt, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	tokenHash := auth.HashToken(token)
	if err := s.sessionRepo.Create(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if err := s.cache.Set(ctx, tokenHash, user, snapshotTTL); err != nil {
		s.logger.WarnContext(ctx, "failed to cache session snapshot",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &AuthSession{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// CurrentUser resolves a session token to its user, serving the hot path
// from the cache when possible.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid session token")
	}

	tokenHash := auth.HashToken(token)

	cached, err := s.cache.Get(ctx, tokenHash)
	if err != nil {
		s.logger.WarnContext(ctx, "session cache lookup failed",
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	session, err := s.sessionRepo.GetByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("session not found")
		}
		return nil, fmt.Errorf("look up session: %w", err)
	}

	if !session.IsValid(time.Now().UTC()) {
		return nil, apperrors.Unauthorized("session expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := s.cache.Set(ctx, tokenHash, user, snapshotTTL); err != nil {
		s.logger.WarnContext(ctx, "failed to cache session snapshot",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// Logout revokes the session behind the token. Revoking an unknown or
// already-revoked token is not an error, so logout never fails the client.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	tokenHash := auth.HashToken(token)

	if err := s.sessionRepo.Revoke(ctx, tokenHash); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	if err := s.cache.Delete(ctx, tokenHash); err != nil {
		s.logger.WarnContext(ctx, "failed to evict session snapshot",
			slog.String("error", err.Error()),
		)
	}

	return nil
}
