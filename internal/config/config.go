// Package config loads and validates service configuration from the
// environment.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/roomhaven/reviews-service/pkg/config"
	"github.com/roomhaven/reviews-service/pkg/database"
)

// Config holds all configuration for the reviews service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    int    `env:"REVIEWS_HTTP_PORT" envDefault:"8084"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"reviews"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`

	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL" envDefault:"30s"`

	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	UserServiceURL    string `env:"USER_SERVICE_URL" envDefault:"http://localhost:8081"`
	ListingServiceURL string `env:"LISTING_SERVICE_URL" envDefault:"http://localhost:8082"`
	AgentServiceURL   string `env:"AGENT_SERVICE_URL" envDefault:"http://localhost:8083"`

	ClientTimeout    time.Duration `env:"CLIENT_TIMEOUT" envDefault:"10s"`
	ClientMaxRetries int           `env:"CLIENT_MAX_RETRIES" envDefault:"3"`

	CBTimeout      time.Duration `env:"CB_TIMEOUT" envDefault:"30s"`
	CBInterval     time.Duration `env:"CB_INTERVAL" envDefault:"60s"`
	CBFailureRatio float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`

	TracingEnabled   bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate  float64 `env:"OTEL_TRACE_SAMPLE_RATE" envDefault:"1.0"`
	ServiceVersion   string  `env:"SERVICE_VERSION" envDefault:"dev"`
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid REVIEWS_HTTP_PORT: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.UserServiceURL == "" || c.ListingServiceURL == "" || c.AgentServiceURL == "" {
		return fmt.Errorf("USER_SERVICE_URL, LISTING_SERVICE_URL, and AGENT_SERVICE_URL are required")
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0, 1]: %g", c.CBFailureRatio)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	return nil
}

// Postgres returns the pool configuration for the shared database package.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSLMode,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

// Redis returns the Redis configuration for the shared database package.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
