package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/database"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/health"
	pkgkafka "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/kafka"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/middleware"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/resilience"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/tracing"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/cache"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/config"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/demo"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/event"
	handler "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/handler/http"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository/guarded"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository/memory"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository/postgres"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/service"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/migrations"
)

const (
	serviceName    = "catalog"
	serviceVersion = "0.1.0"

	// idempotencyTTL bounds how long processed event IDs are remembered.
	idempotencyTTL = 24 * time.Hour
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.closeClients()
		}
	}()

	// Initialize OpenTelemetry tracing.
	a.tracerShutdown, err = tracing.Init(ctx, cfg.Tracing(serviceName, serviceVersion))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	healthHandler := health.NewHandler()

	store, err := a.openStore(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}

	// Every store call goes through the breaker so an outage fails fast.
	breaker := resilience.NewBreaker(cfg.Breaker(), guarded.IsExpected, resilience.NewBreakerMetrics(reg), logger)
	store = guarded.New(store, breaker)

	opts := []service.Option{service.WithMetrics(service.NewMetrics(reg))}

	var facetCache *cache.FacetCache
	if cfg.FacetCacheEnabled() {
		a.redis, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

		facetCache = cache.NewFacetCache(a.redis, time.Duration(cfg.FacetCacheTTLSeconds)*time.Second, reg, logger)
		opts = append(opts, service.WithFacetSource(facetCache))
		client := a.redis
		healthHandler.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	catalogService := service.NewCatalogService(store, logger, opts...)

	if cfg.KafkaEnabled {
		a.consumer = a.newConsumer(facetCache, reg)
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
		})
	}

	// HTTP router.
	router := handler.NewRouter(catalogService, healthHandler, handler.RouterConfig{
		ServiceName:       serviceName,
		RequestTimeout:    cfg.RequestTimeout(),
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
		CacheMaxAge:       cfg.CacheMaxAgeSeconds,
		Metrics:           middleware.NewHTTPMetrics(reg, serviceName),
		MetricsHandler:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openStore builds the configured catalog store and registers its readiness
// check.
func (a *App) openStore(ctx context.Context, reg prometheus.Registerer, healthHandler *health.Handler) (repository.CatalogStore, error) {
	if a.cfg.Store == config.StoreMemory {
		ds := demo.Build(time.Now().UTC())
		a.logger.Info("in-memory catalog store initialized",
			slog.Int("products", len(ds.Products)),
			slog.Int("orders", len(ds.Orders)),
		)
		return memory.New(ds), nil
	}

	pool, err := database.NewPostgresPool(ctx, a.cfg.Postgres(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", a.cfg.PostgresHost),
		slog.Int("port", a.cfg.PostgresPort),
		slog.String("database", a.cfg.PostgresDB),
	)
	reg.MustRegister(database.NewPoolStatsCollector(pool, serviceName))

	if a.cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")
	}

	if a.cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(a.cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	}

	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	return postgres.NewStore(pool), nil
}

// newConsumer subscribes to catalog change events. Without a facet cache
// there is nothing to invalidate, so events are only logged.
func (a *App) newConsumer(facetCache *cache.FacetCache, reg prometheus.Registerer) *pkgkafka.Consumer {
	var invalidator event.Invalidator = noopInvalidator{}
	if facetCache != nil {
		invalidator = facetCache
	}
	eventConsumer := event.NewConsumer(invalidator, a.logger)

	var seen pkgkafka.IdempotencyStore = pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
	if a.redis != nil {
		seen = pkgkafka.NewRedisIdempotencyStore(a.redis, "catalog:events", idempotencyTTL)
	}

	topics := event.Topics()
	a.logger.Info("kafka consumer initialized",
		slog.Any("brokers", a.cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)
	return pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: a.cfg.KafkaBrokers,
		GroupID: a.cfg.KafkaGroupID,
		Topics:  topics,
	}, pkgkafka.IdempotentHandler(seen, eventConsumer.Handle, a.logger), pkgkafka.NewConsumerMetrics(reg), a.logger)
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) error { return nil }

// Run starts the HTTP server and Kafka consumer, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Start Kafka consumer.
	if a.consumer != nil {
		go func() {
			if err := a.consumer.Run(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka consumer
// 4. Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close Kafka consumer.
	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close storage clients.
	if err := a.closeClients(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) closeClients() error {
	var err error
	if a.redis != nil {
		if err = a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return err
}
