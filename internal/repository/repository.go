package repository

import (
	"context"
	"time"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error
}

// SessionRepository defines the interface for portal login session persistence.
type SessionRepository interface {
	// Create stores a new session token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a session record by its token hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.UserSession, error)

	// Revoke revokes a specific session by its token hash.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeByUserID revokes all sessions for the given user.
	RevokeByUserID(ctx context.Context, userID string) error
}

// VideoRepository defines the interface for video catalog persistence.
type VideoRepository interface {
	// Create inserts a new video into the catalog.
	Create(ctx context.Context, video *domain.Video) error

	// GetByID retrieves a video by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Video, error)

	// List returns videos, optionally filtered by category, newest first.
	List(ctx context.Context, category string) ([]domain.Video, error)

	// Categories returns the distinct categories present in the catalog.
	Categories(ctx context.Context) ([]string, error)

	// Delete removes a video from the catalog by its identifier.
	Delete(ctx context.Context, id string) error
}

// PaymentRepository defines the interface for payment transaction persistence.
type PaymentRepository interface {
	// Create inserts a new payment transaction.
	Create(ctx context.Context, tx *domain.PaymentTransaction) error

	// GetByProviderSessionID retrieves a transaction by its provider session ID.
	GetByProviderSessionID(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error)

	// UpdateStatus sets the status of a transaction identified by provider session ID.
	UpdateStatus(ctx context.Context, sessionID, status string) error

	// ListByUserID returns a page of the user's transactions plus the total count.
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.PaymentTransaction, int, error)
}

// SessionCache caches user snapshots keyed by session token hash so the
// hot GET /api/auth/me path can skip the database.
type SessionCache interface {
	// Get returns the cached user for a token hash, or nil on a miss.
	Get(ctx context.Context, tokenHash string) (*domain.User, error)

	// Set stores a user snapshot for a token hash with a TTL.
	Set(ctx context.Context, tokenHash string, user *domain.User, ttl time.Duration) error

	// Delete evicts a single session snapshot.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByUserID evicts every cached snapshot for the given user.
	DeleteByUserID(ctx context.Context, userID string) error
}
