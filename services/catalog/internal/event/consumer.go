// Package event reacts to catalog change events from the bus.
package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/kafka"
)

// Kafka topics whose events change what the facets describe. Event types
// equal their topic names.
var (
	TopicProductCreated  = pkgkafka.Topic("product", "created")
	TopicProductUpdated  = pkgkafka.Topic("product", "updated")
	TopicProductDeleted  = pkgkafka.Topic("product", "deleted")
	TopicCategoryCreated = pkgkafka.Topic("category", "created")
	TopicCategoryUpdated = pkgkafka.Topic("category", "updated")
	TopicCategoryDeleted = pkgkafka.Topic("category", "deleted")
	TopicCatalogReseeded = pkgkafka.Topic("catalog", "reseeded")
)

// Topics lists every topic the consumer subscribes to.
func Topics() []string {
	return []string{
		TopicProductCreated, TopicProductUpdated, TopicProductDeleted,
		TopicCategoryCreated, TopicCategoryUpdated, TopicCategoryDeleted,
		TopicCatalogReseeded,
	}
}

// ReseededData is the payload of a catalog.reseeded event.
type ReseededData struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Orders     int `json:"orders"`
}

// Invalidator drops cached catalog-wide data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Consumer invalidates the facet cache when the catalog changes.
type Consumer struct {
	cache  Invalidator
	logger *slog.Logger
}

// NewConsumer creates a new catalog event consumer.
func NewConsumer(cache Invalidator, logger *slog.Logger) *Consumer {
	return &Consumer{
		cache:  cache,
		logger: logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated, TopicProductDeleted,
		TopicCategoryCreated, TopicCategoryUpdated, TopicCategoryDeleted:
		if err := c.cache.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate facets on %s: %w", event.EventType, err)
		}
		c.logger.InfoContext(ctx, "facet cache invalidated",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
		)
		return nil
	case TopicCatalogReseeded:
		var data ReseededData
		if err := event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("decode reseeded payload: %w", err)
		}
		if err := c.cache.Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate facets on %s: %w", event.EventType, err)
		}
		c.logger.InfoContext(ctx, "catalog reseeded, facet cache invalidated",
			slog.Int("categories", data.Categories),
			slog.Int("products", data.Products),
			slog.Int("orders", data.Orders),
		)
		return nil
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}
