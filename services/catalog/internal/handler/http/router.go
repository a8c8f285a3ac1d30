package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/health"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/middleware"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/service"
)

// RouterConfig holds the ambient pieces the router mounts around the API.
type RouterConfig struct {
	ServiceName       string
	RequestTimeout    time.Duration
	PprofAllowedCIDRs []string
	// CacheMaxAge is the public max-age for API responses; 0 sends no-store.
	CacheMaxAge int
	// Metrics is optional; MetricsHandler serves /metrics when set.
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(chimw.Compress(5))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// Catalog API endpoints
	catalogHandler := NewCatalogHandler(catalogService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
		r.Use(middleware.CacheControl(cfg.CacheMaxAge))
		r.Get("/search", catalogHandler.Search)
		r.Get("/recommendations", catalogHandler.Recommendations)
	})

	return r
}
