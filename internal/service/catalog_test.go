package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/domain"
	apperrors "github.com/edricyan2022-wq/Wrestling-SITE/pkg/errors"
)

func catalogFixture() []domain.Video {
	return []domain.Video{
		{ID: "v-free", Title: "Open Match", URL: "https://youtu.be/free1", EmbedURL: "https://www.youtube.com/embed/free1", Category: "matches", IsPremium: false},
		{ID: "v-premium", Title: "Title Fight", URL: "https://youtu.be/prem1", EmbedURL: "https://www.youtube.com/embed/prem1", Category: "matches", IsPremium: true},
	}
}

func TestListVideos_AnonymousSeesLockedPremium(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	videoRepo.On("List", ctx, "").Return(catalogFixture(), nil)

	listings, err := svc.ListVideos(ctx, nil, "")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.False(t, listings[0].IsLocked)
	assert.NotEmpty(t, listings[0].EmbedURL)

	assert.True(t, listings[1].IsLocked)
	assert.Empty(t, listings[1].URL)
	assert.Empty(t, listings[1].EmbedURL)
}

func TestListVideos_PremiumViewerSeesEverything(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	videoRepo.On("List", ctx, "").Return(catalogFixture(), nil)

	listings, err := svc.ListVideos(ctx, premiumUser(t), "")
	require.NoError(t, err)
	for _, l := range listings {
		assert.False(t, l.IsLocked)
		assert.NotEmpty(t, l.EmbedURL)
	}
}

func TestListVideos_ExpiredSubscriptionLocksPremium(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	lapsed := premiumUser(t)
	past := lapsed.SubscriptionEnds.AddDate(0, -2, 0)
	lapsed.SubscriptionEnds = &past

	videoRepo.On("List", ctx, "").Return(catalogFixture(), nil)

	listings, err := svc.ListVideos(ctx, lapsed, "")
	require.NoError(t, err)
	assert.True(t, listings[1].IsLocked)
}

func TestGetVideo_PremiumRequiresLogin(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	videoRepo.On("GetByID", ctx, "v-premium").Return(&catalogFixture()[1], nil)

	_, err := svc.GetVideo(ctx, nil, "v-premium")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestGetVideo_PremiumRequiresActivePlan(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	videoRepo.On("GetByID", ctx, "v-premium").Return(&catalogFixture()[1], nil)

	_, err := svc.GetVideo(ctx, freeUser(), "v-premium")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}

func TestGetVideo_FreeContentOpenToAnonymous(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	videoRepo.On("GetByID", ctx, "v-free").Return(&catalogFixture()[0], nil)

	listing, err := svc.GetVideo(ctx, nil, "v-free")
	require.NoError(t, err)
	assert.False(t, listing.IsLocked)
	assert.NotEmpty(t, listing.EmbedURL)
}

func TestGetVideo_NotFound(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	videoRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetVideo(ctx, nil, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCreateVideo_AdminOnly(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	input := CreateVideoInput{Title: "New Drop", URL: "https://youtu.be/abc", Category: "matches"}

	_, err := svc.CreateVideo(ctx, freeUser(), input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = svc.CreateVideo(ctx, nil, input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	videoRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateVideo_NormalizesEmbedURL(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	admin := &domain.User{ID: "u-admin", IsAdmin: true}
	videoRepo.On("Create", ctx, mock.MatchedBy(func(v *domain.Video) bool {
		return v.EmbedURL == "https://www.youtube.com/embed/abc123"
	})).Return(nil)

	video, err := svc.CreateVideo(ctx, admin, CreateVideoInput{
		Title:    "New Drop",
		URL:      "https://www.youtube.com/watch?v=abc123",
		Category: "matches",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, video.ID)
	videoRepo.AssertExpectations(t)
}

func TestCreateVideo_MissingFields(t *testing.T) {
	svc := NewCatalogService(new(mockVideoRepository), newTestLogger())
	admin := &domain.User{ID: "u-admin", IsAdmin: true}

	_, err := svc.CreateVideo(context.Background(), admin, CreateVideoInput{URL: "https://youtu.be/x", Category: "matches"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = svc.CreateVideo(context.Background(), admin, CreateVideoInput{Title: "x", Category: "matches"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestDeleteVideo_AdminOnly(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	err := svc.DeleteVideo(ctx, freeUser(), "v-1")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	admin := &domain.User{ID: "u-admin", IsAdmin: true}
	videoRepo.On("Delete", ctx, "v-1").Return(nil)

	err = svc.DeleteVideo(ctx, admin, "v-1")
	assert.NoError(t, err)
	videoRepo.AssertExpectations(t)
}

func TestCategories(t *testing.T) {
	videoRepo := new(mockVideoRepository)
	svc := NewCatalogService(videoRepo, newTestLogger())
	ctx := context.Background()

	videoRepo.On("Categories", ctx).Return([]string{"interviews", "matches"}, nil)

	got, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"interviews", "matches"}, got)
}
