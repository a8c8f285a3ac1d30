// Package postgres implements the Catalog Store on PostgreSQL.
package postgres

import (
	"fmt"
	"strings"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/database"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
)

var _ repository.CatalogStore = (*Store)(nil)

// Store implements repository.CatalogStore using PostgreSQL.
type Store struct {
	db database.DBTX
}

// NewStore creates a new PostgreSQL-backed catalog store.
func NewStore(db database.DBTX) *Store {
	return &Store{db: db}
}

const productFrom = `
		FROM products p
		JOIN categories c ON c.id = p.category_id`

// buildWhere renders pred as a WHERE clause. Placeholders start at $1.
func buildWhere(pred query.Predicate) (string, []any) {
	var (
		conditions = []string{"p.is_active"}
		args       []any
		argIndex   = 1
	)

	if pred.Text != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.description ILIKE $%d OR p.tags ILIKE $%d OR c.name ILIKE $%d)",
			argIndex, argIndex, argIndex, argIndex))
		args = append(args, query.LikePattern(pred.Text))
		argIndex++
	}

	if pred.CategorySlug != "" {
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", argIndex))
		args = append(args, pred.CategorySlug)
		argIndex++
	}

	if len(pred.CategoryIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.category_id = ANY($%d)", argIndex))
		args = append(args, pred.CategoryIDs)
		argIndex++
	}

	if len(pred.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.id = ANY($%d)", argIndex))
		args = append(args, pred.IDs)
		argIndex++
	}

	if len(pred.ExcludeIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.id <> ALL($%d)", argIndex))
		args = append(args, pred.ExcludeIDs)
		argIndex++
	}

	if pred.MinPriceCents != nil {
		conditions = append(conditions, fmt.Sprintf("p.price_cents >= $%d", argIndex))
		args = append(args, *pred.MinPriceCents)
		argIndex++
	}

	if pred.MaxPriceCents != nil {
		conditions = append(conditions, fmt.Sprintf("p.price_cents <= $%d", argIndex))
		args = append(args, *pred.MaxPriceCents)
		argIndex++
	}

	if pred.InStockOnly {
		conditions = append(conditions, "p.quantity > 0")
	}

	if len(pred.Tags) > 0 {
		patterns := make([]string, len(pred.Tags))
		for i, t := range pred.Tags {
			patterns[i] = query.LikePattern(t)
		}
		conditions = append(conditions, fmt.Sprintf("p.tags ILIKE ANY($%d)", argIndex))
		args = append(args, patterns)
		argIndex++
	}

	if pred.FeaturedOnly {
		conditions = append(conditions, "p.is_featured")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

var orderColumns = map[query.Field]string{
	query.FieldPrice:     "p.price_cents",
	query.FieldName:      "lower(p.name)",
	query.FieldCreatedAt: "p.created_at",
	query.FieldFeatured:  "p.is_featured",
	query.FieldID:        "p.id",
}

// buildOrder renders terms as an ORDER BY clause, defaulting to id.
func buildOrder(terms []query.Term) string {
	if len(terms) == 0 {
		return "ORDER BY p.id"
	}
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		col, ok := orderColumns[t.Field]
		if !ok {
			continue
		}
		if t.Desc {
			col += " DESC"
		}
		parts = append(parts, col)
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

// limitArg maps a non-positive limit to NULL, which PostgreSQL treats as
// LIMIT ALL.
func limitArg(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}
