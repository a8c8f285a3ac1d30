package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/database"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

// CoPurchased counts, per other active product, the distinct orders it
// shares with productID.
func (s *Store) CoPurchased(ctx context.Context, productID string, limit int) (_ []domain.ProductCount, err error) {
	const stmt = `
		SELECT other.product_id, COUNT(DISTINCT other.order_id) AS together
		FROM order_items seed
		JOIN order_items other ON other.order_id = seed.order_id AND other.product_id <> seed.product_id
		JOIN products p ON p.id = other.product_id AND p.is_active
		WHERE seed.product_id = $1
		GROUP BY other.product_id
		ORDER BY together DESC, other.product_id
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "CoPurchased", stmt)
	defer func() { end(err) }()

	return s.queryCounts(ctx, stmt, "co-purchased", productID, limitArg(limit))
}

// TrendingSince counts order items per active product since the cutoff.
func (s *Store) TrendingSince(ctx context.Context, since time.Time, limit int) (_ []domain.ProductCount, err error) {
	const stmt = `
		SELECT oi.product_id, COUNT(*) AS recent
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id AND p.is_active
		WHERE oi.created_at >= $1
		GROUP BY oi.product_id
		ORDER BY recent DESC, oi.product_id
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "TrendingSince", stmt)
	defer func() { end(err) }()

	return s.queryCounts(ctx, stmt, "trending", since, limitArg(limit))
}

// PurchaseHistory returns the categories and tags of products userID ordered.
func (s *Store) PurchaseHistory(ctx context.Context, userID string) (_ domain.PurchaseHistory, err error) {
	const stmt = `
		SELECT DISTINCT p.category_id, p.tags
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE o.user_id = $1`

	ctx, end := database.TraceQuery(ctx, "PurchaseHistory", stmt)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, stmt, userID)
	if err != nil {
		return domain.PurchaseHistory{}, fmt.Errorf("purchase history: %w", err)
	}
	defer rows.Close()

	var (
		categories []string
		tags       []string
	)
	for rows.Next() {
		var categoryID, rawTags string
		if err := rows.Scan(&categoryID, &rawTags); err != nil {
			return domain.PurchaseHistory{}, fmt.Errorf("scan purchase history: %w", err)
		}
		if !slices.Contains(categories, categoryID) {
			categories = append(categories, categoryID)
		}
		tags = append(tags, domain.SplitTags(rawTags)...)
	}
	if err := rows.Err(); err != nil {
		return domain.PurchaseHistory{}, fmt.Errorf("iterate purchase history: %w", err)
	}

	h := domain.PurchaseHistory{CategoryIDs: categories, Tags: domain.NormalizeTags(tags)}
	slices.Sort(h.CategoryIDs)
	slices.Sort(h.Tags)
	return h, nil
}

func (s *Store) queryCounts(ctx context.Context, stmt, what string, args ...any) ([]domain.ProductCount, error) {
	rows, err := s.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	out := []domain.ProductCount{}
	for rows.Next() {
		var c domain.ProductCount
		if err := rows.Scan(&c.ProductID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
