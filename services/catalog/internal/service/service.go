// Package service implements catalog search and recommendations on top of a
// Catalog Store.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
)

// FacetSource serves catalog facets, typically from a cache, calling load
// when it has nothing fresher.
type FacetSource interface {
	Get(ctx context.Context, load func(context.Context) (domain.Facets, error)) (domain.Facets, error)
}

// CatalogService implements the query side of the storefront catalog.
type CatalogService struct {
	store   repository.CatalogStore
	facets  FacetSource
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a CatalogService.
type Option func(*CatalogService)

// WithFacetSource serves facets through src instead of reading them per request.
func WithFacetSource(src FacetSource) Option {
	return func(s *CatalogService) { s.facets = src }
}

// WithMetrics records catalog metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *CatalogService) { s.metrics = m }
}

// WithClock overrides the wall clock used for trending windows.
func WithClock(now func() time.Time) Option {
	return func(s *CatalogService) { s.now = now }
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store repository.CatalogStore, logger *slog.Logger, opts ...Option) *CatalogService {
	s := &CatalogService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
