package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
)

// VideoRepository implements repository.VideoRepository using PostgreSQL.
type VideoRepository struct {
	pool DB
}

// NewVideoRepository creates a new PostgreSQL-backed video repository.
func NewVideoRepository(pool DB) *VideoRepository {
	return &VideoRepository{pool: pool}
}

// Create inserts a new video into the catalog.
func (r *VideoRepository) Create(ctx context.Context, v *domain.Video) error {
	query := `
		INSERT INTO videos (id, title, description, url, embed_url, thumbnail, category, is_premium, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		v.ID,
		v.Title,
		v.Description,
		v.URL,
		v.EmbedURL,
		v.Thumbnail,
		v.Category,
		v.IsPremium,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// GetByID retrieves a video by its ID.
func (r *VideoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	query := `
		SELECT id, title, description, url, embed_url, thumbnail, category, is_premium, created_at, updated_at
		FROM videos
		WHERE id = $1`

	var v domain.Video
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.Title,
		&v.Description,
		&v.URL,
		&v.EmbedURL,
		&v.Thumbnail,
		&v.Category,
		&v.IsPremium,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan video: %w", err)
	}

	return &v, nil
}

// List returns videos, optionally filtered by category, newest first.
func (r *VideoRepository) List(ctx context.Context, category string) ([]domain.Video, error) {
	query := `
		SELECT id, title, description, url, embed_url, thumbnail, category, is_premium, created_at, updated_at
		FROM videos`
	args := []any{}

	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(
			&v.ID,
			&v.Title,
			&v.Description,
			&v.URL,
			&v.EmbedURL,
			&v.Thumbnail,
			&v.Category,
			&v.IsPremium,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video rows: %w", err)
	}

	if videos == nil {
		videos = []domain.Video{}
	}

	return videos, nil
}

// Categories returns the distinct categories present in the catalog.
func (r *VideoRepository) Categories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM videos ORDER BY category`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []string{}
	}

	return categories, nil
}

// Delete removes a video from the catalog by its ID.
func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM videos WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("video", id)
	}

	return nil
}
