// Command seed loads the demo Sacred Treasures catalog into PostgreSQL,
// replacing whatever the catalog tables held, and announces the reseed so
// running catalog services drop cached facets.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/database"
	pkgkafka "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/kafka"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/logger"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/config"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/demo"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/event"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository/postgres"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("catalog-seed", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return err
	}

	ds := demo.Build(time.Now().UTC())
	if err := postgres.Seed(ctx, pool, ds); err != nil {
		return err
	}
	counts := event.ReseededData{
		Categories: len(ds.Categories),
		Products:   len(ds.Products),
		Orders:     len(ds.Orders),
	}
	log.Info("catalog seeded",
		slog.String("database", cfg.PostgresDB),
		slog.Int("categories", counts.Categories),
		slog.Int("products", counts.Products),
		slog.Int("reviews", len(ds.Reviews)),
		slog.Int("orders", counts.Orders),
	)

	if !cfg.KafkaEnabled {
		return nil
	}

	evt, err := pkgkafka.NewEvent(event.TopicCatalogReseeded, "catalog", "catalog", "catalog-seed", counts)
	if err != nil {
		return err
	}
	producer := pkgkafka.NewProducer(cfg.KafkaBrokers, log)
	defer producer.Close()

	// The data is already committed; a missed announcement only delays
	// facet cache expiry.
	if err := producer.Publish(ctx, event.TopicCatalogReseeded, evt); err != nil {
		log.Warn("failed to announce reseed", slog.String("error", err.Error()))
		return nil
	}
	log.Info("reseed announced", slog.String("topic", event.TopicCatalogReseeded))
	return nil
}
