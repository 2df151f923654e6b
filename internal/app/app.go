package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/edricyan2022-wq/Wrestling-SITE/internal/auth"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/config"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/event"
	handler "github.com/edricyan2022-wq/Wrestling-SITE/internal/handler/http"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/identity"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider/checkout"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/provider/mock"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/repository/postgres"
	redisrepo "github.com/edricyan2022-wq/Wrestling-SITE/internal/repository/redis"
	"github.com/edricyan2022-wq/Wrestling-SITE/internal/service"
	"github.com/edricyan2022-wq/Wrestling-SITE/migrations"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/database"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/health"
	pkgkafka "github.com/edricyan2022-wq/Wrestling-SITE/pkg/kafka"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/tracing"
)

// snapshotTTL bounds how long a cached user snapshot may outlive a
// subscription change before the database record is consulted again.
const snapshotTTL = 15 * time.Minute

// App wires together all dependencies and runs the portal service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "portal",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Redis for session snapshot caching.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.Redis().Addr()),
	)

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionExpiry)
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	videoRepo := postgres.NewVideoRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	sessionCache := redisrepo.NewSessionCache(redisClient, snapshotTTL)

	identityClient := identity.NewClient(cfg.IdentityExchangeURL)

	// Without provider credentials in development, checkout runs against the
	// in-memory provider so the full payment flow works locally.
	var checkoutProvider provider.Provider
	if cfg.CheckoutAPIKey == "" && cfg.Environment == "development" {
		checkoutProvider = mock.NewProvider()
	} else {
		checkoutProvider = checkout.NewProvider(checkout.Config{
			BaseURL:       cfg.CheckoutBaseURL,
			APIKey:        cfg.CheckoutAPIKey,
			WebhookSecret: cfg.CheckoutWebhookSecret,
		})
	}
	logger.Info("checkout provider initialized", slog.String("provider", checkoutProvider.Name()))
	eventProducer := event.NewProducer(producer, logger)

	authService := service.NewAuthService(
		userRepo, sessionRepo, sessionCache, identityClient, tokens, eventProducer,
		cfg.AdminEmail, logger,
	)
	catalogService := service.NewCatalogService(videoRepo, logger)
	billingService := service.NewBillingService(
		paymentRepo, userRepo, sessionCache, checkoutProvider, eventProducer, logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		AuthService:    authService,
		CatalogService: catalogService,
		BillingService: billingService,
		HealthHandler:  healthHandler,
		Logger:         logger,
		CORS: handler.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		SecureCookies: cfg.Environment != "development",
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Redis client
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
