package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/service"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/httputil"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/validator"
)

// VideoHandler handles HTTP requests for the video catalog.
type VideoHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewVideoHandler creates a new video HTTP handler.
func NewVideoHandler(svc *service.CatalogService, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{service: svc, logger: logger}
}

// CreateVideoRequest is the JSON request body for publishing a video.
type CreateVideoRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	URL         string `json:"url" validate:"required,url"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,url"`
	Category    string `json:"category" validate:"required,min=1,max=100"`
	IsPremium   bool   `json:"is_premium"`
}

// List handles GET /api/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	listings, err := h.service.ListVideos(r.Context(), UserFromContext(r.Context()), category)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listings})
}

// Get handles GET /api/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := h.service.GetVideo(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// Create handles POST /api/videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	video, err := h.service.CreateVideo(r.Context(), UserFromContext(r.Context()), service.CreateVideoInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Thumbnail:   req.Thumbnail,
		Category:    req.Category,
		IsPremium:   req.IsPremium,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: video})
}

// Delete handles DELETE /api/videos/{id}
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteVideo(r.Context(), UserFromContext(r.Context()), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Categories handles GET /api/categories
func (h *VideoHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}
