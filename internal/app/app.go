// Package app assembles the reviews service: configuration, dependencies,
// HTTP server, and shutdown ordering.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/roomhaven/reviews-service/internal/cache"
	"github.com/roomhaven/reviews-service/internal/config"
	"github.com/roomhaven/reviews-service/internal/event"
	"github.com/roomhaven/reviews-service/internal/gateway"
	handler "github.com/roomhaven/reviews-service/internal/handler/http"
	"github.com/roomhaven/reviews-service/internal/repository/postgres"
	"github.com/roomhaven/reviews-service/internal/service"
	"github.com/roomhaven/reviews-service/migrations"
	"github.com/roomhaven/reviews-service/pkg/database"
	"github.com/roomhaven/reviews-service/pkg/health"
	"github.com/roomhaven/reviews-service/pkg/httpclient"
	"github.com/roomhaven/reviews-service/pkg/kafka"
	"github.com/roomhaven/reviews-service/pkg/tracing"
)

// App holds the wired service and its closable dependencies.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	server         *http.Server
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	kafkaProducer  *kafka.Producer
	tracerShutdown func(context.Context) error
}

// New builds the application from configuration. Everything that can fail at
// startup fails here, before the HTTP listener opens.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "reviews-service",
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, "reviews-service")

	var redisClient *redis.Client
	var statsCache *cache.StatsCache
	if cfg.RedisEnabled {
		redisClient, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		statsCache = cache.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	}

	var kafkaProducer *kafka.Producer
	var publisher event.Publisher = event.NoopPublisher{}
	if cfg.KafkaEnabled {
		kafkaProducer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewKafkaPublisher(kafkaProducer, logger)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:         cfg.ClientTimeout,
		MaxRetries:      cfg.ClientMaxRetries,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	})
	cbCfg := httpclient.DefaultCircuitBreakerConfig("entity-gateway")
	cbCfg.Timeout = cfg.CBTimeout
	cbCfg.Interval = cfg.CBInterval
	cbCfg.FailureRatio = cfg.CBFailureRatio
	cbCfg.MinRequests = cfg.CBMinRequests
	cbClient := httpclient.NewCircuitBreakerClient(client, cbCfg, logger)

	entityGateway := gateway.NewHTTPGateway(
		cbClient,
		cfg.UserServiceURL,
		cfg.ListingServiceURL,
		cfg.AgentServiceURL,
	)

	repo := postgres.NewReviewRepository(pool)
	reviewService := service.NewReviewService(repo, entityGateway, statsCache, publisher, logger)

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if kafkaProducer != nil {
		healthHandler.RegisterNonCritical("kafka", kafkaProducer.Ping)
	}

	router := handler.NewRouter(reviewService, healthHandler, logger, handler.RouterConfig{
		Environment:      cfg.Environment,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		server:         server,
		pool:           pool,
		redisClient:    redisClient,
		kafkaProducer:  kafkaProducer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("reviews service listening",
			slog.String("addr", a.server.Addr),
			slog.String("environment", a.cfg.Environment),
		)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Shutdown drains in-flight requests first, then releases dependencies in
// reverse dependency order.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := a.server.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("drain http server: %w", err)
	}

	if err := a.tracerShutdown(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("flush tracer: %w", err)
	}

	if a.kafkaProducer != nil {
		if err := a.kafkaProducer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close kafka producer: %w", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close redis client: %w", err)
		}
	}

	a.pool.Close()

	a.logger.Info("shutdown complete")
	return firstErr
}
