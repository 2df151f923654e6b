package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/repository"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
)

// CatalogService implements the video catalog business logic.
type CatalogService struct {
	videoRepo repository.VideoRepository
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(videoRepo repository.VideoRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		videoRepo: videoRepo,
		logger:    logger,
	}
}

// CreateVideoInput holds the parameters for adding a video to the catalog.
type CreateVideoInput struct {
	Title       string
	Description string
	URL         string
	Thumbnail   string
	Category    string
	IsPremium   bool
}

// ListVideos returns the catalog as seen by the viewer. Premium entries are
// included for everyone but locked unless the viewer holds an active paid plan.
func (s *CatalogService) ListVideos(ctx context.Context, viewer *domain.User, category string) ([]domain.VideoListing, error) {
	videos, err := s.videoRepo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	hasPremium := viewer != nil && viewer.HasActivePremium(time.Now().UTC())

	listings := make([]domain.VideoListing, 0, len(videos))
	for _, v := range videos {
		listings = append(listings, v.Listing(hasPremium))
	}

	return listings, nil
}

// GetVideo returns a single video for the viewer. Premium content requires a
// login (401) and an active paid plan (403).
func (s *CatalogService) GetVideo(ctx context.Context, viewer *domain.User, id string) (*domain.VideoListing, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("video", id)
		}
		return nil, fmt.Errorf("get video: %w", err)
	}

	if video.IsPremium {
		if viewer == nil {
			return nil, apperrors.Unauthorized("login required for premium content")
		}
		if !viewer.HasActivePremium(time.Now().UTC()) {
			return nil, apperrors.Forbidden("active subscription required for premium content")
		}
	}

	listing := video.Listing(true)
	return &listing, nil
}

// CreateVideo adds a video to the catalog. Admin only.
func (s *CatalogService) CreateVideo(ctx context.Context, actor *domain.User, input CreateVideoInput) (*domain.Video, error) {
	if actor == nil || !actor.IsAdmin {
		return nil, apperrors.Forbidden("admin access required")
	}
	if input.Title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.URL == "" {
		return nil, apperrors.InvalidInput("url is required")
	}
	if input.Category == "" {
		return nil, apperrors.InvalidInput("category is required")
	}

	embedURL, err := domain.NormalizeEmbedURL(input.URL)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	now := time.Now().UTC()
	video := &domain.Video{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		URL:         input.URL,
		EmbedURL:    embedURL,
		Thumbnail:   input.Thumbnail,
		Category:    input.Category,
		IsPremium:   input.IsPremium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}

	s.logger.InfoContext(ctx, "video added to catalog",
		slog.String("video_id", video.ID),
		slog.String("category", video.Category),
		slog.Bool("is_premium", video.IsPremium),
	)

	return video, nil
}

// DeleteVideo removes a video from the catalog. Admin only.
func (s *CatalogService) DeleteVideo(ctx context.Context, actor *domain.User, id string) error {
	if actor == nil || !actor.IsAdmin {
		return apperrors.Forbidden("admin access required")
	}

	if err := s.videoRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "video removed from catalog",
		slog.String("video_id", id),
	)

	return nil
}

// Categories returns the distinct categories present in the catalog.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.videoRepo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
