package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/service"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/health"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/middleware"
)

// RouterConfig bundles the dependencies for the portal's HTTP router.
type RouterConfig struct {
	AuthService    *service.AuthService
	CatalogService *service.CatalogService
	BillingService *service.BillingService
	HealthHandler  *health.Handler
	Logger         *slog.Logger
	CORS           CORSConfig
	SecureCookies  bool
}

// NewRouter creates a chi router with all portal routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("portal"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(cfg.AuthService, cfg.SecureCookies, cfg.Logger)
	videoHandler := NewVideoHandler(cfg.CatalogService, cfg.Logger)
	paymentHandler := NewPaymentHandler(cfg.BillingService, cfg.Logger)

	// Session endpoints
	r.Route("/api/auth", func(r chi.Router) {
		r.With(ContentTypeJSON).Post("/session", authHandler.Exchange)
		r.With(SessionAuth(cfg.AuthService)).Get("/me", authHandler.Me)
		r.Post("/logout", authHandler.Logout)
	})

	// Catalog endpoints. Browsing works anonymously; locked entries come
	// back with their playback URLs stripped.
	r.Group(func(r chi.Router) {
		r.Use(OptionalSessionAuth(cfg.AuthService))

		r.Get("/api/videos", videoHandler.List)
		r.Get("/api/videos/{id}", videoHandler.Get)
		r.Get("/api/categories", videoHandler.Categories)
	})

	// Admin catalog management
	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(cfg.AuthService))
		r.Use(RequireAdmin)

		r.With(ContentTypeJSON).Post("/api/videos", videoHandler.Create)
		r.Delete("/api/videos/{id}", videoHandler.Delete)
	})

	// Billing endpoints
	r.Get("/api/plans", paymentHandler.Plans)

	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(cfg.AuthService))

		r.With(ContentTypeJSON).Post("/api/payments/create-checkout", paymentHandler.CreateCheckout)
		r.Get("/api/payments/status/{sessionID}", paymentHandler.Status)
		r.Get("/api/payments/history", paymentHandler.History)
	})

	// Provider callback, authenticated by signature rather than session.
	r.Post("/api/webhook/checkout", paymentHandler.Webhook)

	return r
}
