package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
)

// PaymentRepository implements repository.PaymentRepository using PostgreSQL.
type PaymentRepository struct {
	pool DB
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool DB) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a new payment transaction.
func (r *PaymentRepository) Create(ctx context.Context, t *domain.PaymentTransaction) error {
	query := `
		INSERT INTO payment_transactions (id, user_id, provider_session_id, plan_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.ProviderSessionID,
		t.PlanID,
		t.Amount,
		t.Currency,
		t.Status,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("payment transaction", "provider session", t.ProviderSessionID)
		}
		return fmt.Errorf("insert payment transaction: %w", err)
	}

	return nil
}

// GetByProviderSessionID retrieves a transaction by its provider session ID.
func (r *PaymentRepository) GetByProviderSessionID(ctx context.Context, sessionID string) (*domain.PaymentTransaction, error) {
	query := `
		SELECT id, user_id, provider_session_id, plan_id, amount, currency, status, created_at, updated_at
		FROM payment_transactions
		WHERE provider_session_id = $1`

	var t domain.PaymentTransaction
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&t.ID,
		&t.UserID,
		&t.ProviderSessionID,
		&t.PlanID,
		&t.Amount,
		&t.Currency,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan payment transaction: %w", err)
	}

	return &t, nil
}

// UpdateStatus sets the status of a transaction identified by provider session ID.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, sessionID, status string) error {
	if !domain.IsValidPaymentStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid payment status %q", status))
	}

	query := `UPDATE payment_transactions SET status = $1, updated_at = $2 WHERE provider_session_id = $3`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("payment transaction", sessionID)
	}

	return nil
}

// ListByUserID returns a page of the user's transactions plus the total count.
func (r *PaymentRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]domain.PaymentTransaction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_transactions WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payment transactions: %w", err)
	}

	query := `
		SELECT id, user_id, provider_session_id, plan_id, amount, currency, status, created_at, updated_at
		FROM payment_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list payment transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.PaymentTransaction
	for rows.Next() {
		var t domain.PaymentTransaction
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.ProviderSessionID,
			&t.PlanID,
			&t.Amount,
			&t.Currency,
			&t.Status,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan payment transaction row: %w", err)
		}
		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate payment transaction rows: %w", err)
	}

	if txs == nil {
		txs = []domain.PaymentTransaction{}
	}

	return txs, total, nil
}
