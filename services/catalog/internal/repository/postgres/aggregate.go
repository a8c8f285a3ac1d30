package postgres

import (
	"context"
	"fmt"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/database"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

// RatingTotals aggregates review ratings for productIDs in one query.
func (s *Store) RatingTotals(ctx context.Context, productIDs []string) (_ map[string]domain.RatingTotal, err error) {
	out := make(map[string]domain.RatingTotal)
	if len(productIDs) == 0 {
		return out, nil
	}

	const stmt = `
		SELECT product_id, COALESCE(SUM(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = ANY($1)
		GROUP BY product_id`

	ctx, end := database.TraceQuery(ctx, "RatingTotals", stmt)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, stmt, productIDs)
	if err != nil {
		return nil, fmt.Errorf("rating totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			t  domain.RatingTotal
		)
		if err := rows.Scan(&id, &t.Sum, &t.Count); err != nil {
			return nil, fmt.Errorf("scan rating total: %w", err)
		}
		out[id] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating totals: %w", err)
	}
	return out, nil
}

// Popularity counts all-time order items for productIDs.
func (s *Store) Popularity(ctx context.Context, productIDs []string) (_ map[string]int, err error) {
	out := make(map[string]int)
	if len(productIDs) == 0 {
		return out, nil
	}

	const stmt = `
		SELECT product_id, COUNT(*)
		FROM order_items
		WHERE product_id = ANY($1)
		GROUP BY product_id`

	ctx, end := database.TraceQuery(ctx, "Popularity", stmt)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, stmt, productIDs)
	if err != nil {
		return nil, fmt.Errorf("popularity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan popularity: %w", err)
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popularity: %w", err)
	}
	return out, nil
}

// Variants loads the variants of productIDs grouped by product.
func (s *Store) Variants(ctx context.Context, productIDs []string) (_ map[string][]domain.Variant, err error) {
	out := make(map[string][]domain.Variant)
	if len(productIDs) == 0 {
		return out, nil
	}

	const stmt = `
		SELECT id, product_id, name, value, price_cents, quantity
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, name, value, id`

	ctx, end := database.TraceQuery(ctx, "Variants", stmt)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, stmt, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v          domain.Variant
			productID  string
			priceCents *int64
		)
		if err := rows.Scan(&v.ID, &productID, &v.Name, &v.Value, &priceCents, &v.Quantity); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		if priceCents != nil {
			p := domain.PriceFromCents(*priceCents)
			v.Price = &p
		}
		out[productID] = append(out[productID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return out, nil
}
