package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/edricyan2022-wq/Wrestling-SITE/pkg/config"
	"github.com/edricyan2022-wq/Wrestling-SITE/pkg/database"
)

// Config holds all configuration for the portal service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"PORTAL_HTTP_PORT" envDefault:"8001"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"portal"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"portal_secret"`
	PostgresDB   string `env:"PORTAL_DB_NAME" envDefault:"portal_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Identity provider: the hosted login page users are redirected to, and
	// the backend endpoint that exchanges a one-time session ID for a profile.
	AuthEndpoint        string `env:"AUTH_ENDPOINT" envDefault:"https://auth.example.com/login"`
	IdentityExchangeURL string `env:"IDENTITY_EXCHANGE_URL" envDefault:"https://auth.example.com/api/session-data"`

	// Checkout provider
	CheckoutBaseURL       string `env:"CHECKOUT_BASE_URL" envDefault:"https://api.checkout.example.com"`
	CheckoutAPIKey        string `env:"CHECKOUT_API_KEY" envDefault:""`
	CheckoutWebhookSecret string `env:"CHECKOUT_WEBHOOK_SECRET" envDefault:""`

	// Session tokens
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	SessionExpiry time.Duration `env:"SESSION_EXPIRY" envDefault:"168h"`

	// Admin access is granted to this account only.
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:""`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := pkgconfig.Load[Config]()
	if err != nil {
		return nil, fmt.Errorf("load portal config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// Postgres returns the pool configuration for the portal database.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}

// Redis returns the client configuration for the portal session cache.
func (c *Config) Redis() database.RedisConfig {
	rd := database.DefaultRedisConfig()
	rd.Host = c.RedisHost
	rd.Port = c.RedisPort
	rd.Password = c.RedisPass
	rd.DB = c.RedisDB
	return rd
}
