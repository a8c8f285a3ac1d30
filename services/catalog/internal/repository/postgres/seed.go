package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/demo"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

const truncateCatalog = `TRUNCATE order_items, orders, reviews, product_variants, products, categories`

// Seeder is the connection Seed opens its transaction on.
type Seeder interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Seed replaces every catalog table with ds in one transaction. Rows are
// streamed with COPY; categories are written parents first.
func Seed(ctx context.Context, db Seeder, ds *demo.Dataset) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, truncateCatalog); err != nil {
		return fmt.Errorf("truncate catalog: %w", err)
	}

	for _, t := range seedTables(ds) {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{t.name}, t.columns, pgx.CopyFromRows(t.rows)); err != nil {
			return fmt.Errorf("copy %s: %w", t.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

type seedTable struct {
	name    string
	columns []string
	rows    [][]any
}

// seedTables lists tables in foreign-key order.
func seedTables(ds *demo.Dataset) []seedTable {
	categories := seedTable{name: "categories", columns: []string{"id", "slug", "name", "description", "parent_id"}}
	for _, c := range ds.Categories {
		categories.rows = append(categories.rows, []any{c.ID, c.Slug, c.Name, c.Description, c.ParentID})
	}

	products := seedTable{name: "products", columns: []string{
		"id", "slug", "name", "description", "price_cents", "compare_price_cents", "sku",
		"quantity", "tags", "is_active", "is_featured", "is_digital", "category_id",
		"created_at", "updated_at",
	}}
	variants := seedTable{name: "product_variants", columns: []string{
		"id", "product_id", "name", "value", "price_cents", "quantity",
	}}
	for _, p := range ds.Products {
		products.rows = append(products.rows, []any{
			p.ID, p.Slug, p.Name, p.Description, p.PriceCents(), cents(p.ComparePrice), p.SKU,
			p.Quantity, domain.JoinTags(p.Tags), p.IsActive, p.IsFeatured, p.IsDigital, p.CategoryID,
			p.CreatedAt, p.UpdatedAt,
		})
		for _, v := range p.Variants {
			variants.rows = append(variants.rows, []any{v.ID, p.ID, v.Name, v.Value, cents(v.Price), v.Quantity})
		}
	}

	reviews := seedTable{name: "reviews", columns: []string{
		"id", "product_id", "user_id", "rating", "title", "comment", "is_verified", "created_at",
	}}
	for _, r := range ds.Reviews {
		reviews.rows = append(reviews.rows, []any{
			r.ID, r.ProductID, r.UserID, int16(r.Rating), nullable(r.Title), nullable(r.Comment), r.IsVerified, r.CreatedAt,
		})
	}

	orders := seedTable{name: "orders", columns: []string{"id", "user_id", "created_at"}}
	items := seedTable{name: "order_items", columns: []string{
		"id", "order_id", "product_id", "quantity", "price_cents", "created_at",
	}}
	for _, o := range ds.Orders {
		orders.rows = append(orders.rows, []any{o.ID, o.UserID, o.CreatedAt})
		for _, it := range o.Items {
			items.rows = append(items.rows, []any{it.ID, o.ID, it.ProductID, it.Quantity, it.PriceCents, it.CreatedAt})
		}
	}

	return []seedTable{categories, products, variants, reviews, orders, items}
}

func cents(d *domain.Money) *int64 {
	if d == nil {
		return nil
	}
	c := d.Shift(2).IntPart()
	return &c
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
