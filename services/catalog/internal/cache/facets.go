// Package cache keeps the catalog-wide facets in Redis. Facets change only
// when products or categories do, so they are shared across requests;
// per-product stats are never cached.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

// FacetsKey is bumped whenever the cached shape changes.
const FacetsKey = "catalog:facets:v1"

// FacetCache is a read-through Redis cache for domain.Facets.
type FacetCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

// NewFacetCache creates a cache whose entries expire after ttl.
func NewFacetCache(client redis.UniversalClient, ttl time.Duration, reg prometheus.Registerer, logger *slog.Logger) *FacetCache {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_facet_cache_lookups_total",
		Help: "Facet cache lookups by result (hit, miss, error).",
	}, []string{"result"})
	reg.MustRegister(lookups)

	return &FacetCache{client: client, ttl: ttl, logger: logger, lookups: lookups}
}

// Get returns cached facets, calling load on a miss. Redis failures degrade
// to load so the cache is never on the critical path.
func (c *FacetCache) Get(ctx context.Context, load func(context.Context) (domain.Facets, error)) (domain.Facets, error) {
	data, err := c.client.Get(ctx, FacetsKey).Bytes()
	switch {
	case err == nil:
		var f domain.Facets
		if err := json.Unmarshal(data, &f); err == nil {
			c.lookups.WithLabelValues("hit").Inc()
			return f, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable facet cache entry")
		c.lookups.WithLabelValues("miss").Inc()
	case errors.Is(err, redis.Nil):
		c.lookups.WithLabelValues("miss").Inc()
	default:
		c.lookups.WithLabelValues("error").Inc()
		c.logger.WarnContext(ctx, "facet cache read failed", slog.String("error", err.Error()))
		return load(ctx)
	}

	f, err := load(ctx)
	if err != nil {
		return domain.Facets{}, err
	}
	if err := c.store(ctx, f); err != nil {
		c.logger.WarnContext(ctx, "facet cache write failed", slog.String("error", err.Error()))
	}
	return f, nil
}

func (c *FacetCache) store(ctx context.Context, f domain.Facets) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal facets: %w", err)
	}
	if err := c.client.Set(ctx, FacetsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set facets: %w", err)
	}
	return nil
}

// Invalidate drops the cached facets.
func (c *FacetCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, FacetsKey).Err(); err != nil {
		return fmt.Errorf("redis del facets: %w", err)
	}
	return nil
}
