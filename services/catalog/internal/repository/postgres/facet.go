package postgres

import (
	"context"
	"fmt"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/database"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
)

// CategoryFacets lists categories with their active product counts.
func (s *Store) CategoryFacets(ctx context.Context) (_ []domain.CategoryFacet, err error) {
	const stmt = `
		SELECT c.id, c.slug, c.name, c.parent_id, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.is_active
		GROUP BY c.id, c.slug, c.name, c.parent_id
		ORDER BY c.name, c.id`

	ctx, end := database.TraceQuery(ctx, "CategoryFacets", stmt)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("category facets: %w", err)
	}
	defer rows.Close()

	facets := []domain.CategoryFacet{}
	for rows.Next() {
		var f domain.CategoryFacet
		if err := rows.Scan(&f.ID, &f.Slug, &f.Name, &f.ParentID, &f.ProductCount); err != nil {
			return nil, fmt.Errorf("scan category facet: %w", err)
		}
		facets = append(facets, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category facets: %w", err)
	}
	return facets, nil
}

// TagVocabulary returns the distinct lowercase tags used by active products.
func (s *Store) TagVocabulary(ctx context.Context) (_ []string, err error) {
	const stmt = `
		SELECT DISTINCT lower(btrim(t)) AS tag
		FROM products p, unnest(string_to_array(p.tags, ',')) AS t
		WHERE p.is_active AND btrim(t) <> ''
		ORDER BY tag`

	ctx, end := database.TraceQuery(ctx, "TagVocabulary", stmt)
	defer func() { end(err) }()

	return s.queryStrings(ctx, stmt, "tag vocabulary")
}

// PriceRange returns the min and max active price, or zeros.
func (s *Store) PriceRange(ctx context.Context) (_ domain.PriceRange, err error) {
	const stmt = `
		SELECT COALESCE(MIN(price_cents), 0), COALESCE(MAX(price_cents), 0)
		FROM products
		WHERE is_active`

	ctx, end := database.TraceQuery(ctx, "PriceRange", stmt)
	defer func() { end(err) }()

	var lo, hi int64
	if err := s.db.QueryRow(ctx, stmt).Scan(&lo, &hi); err != nil {
		return domain.PriceRange{}, fmt.Errorf("price range: %w", err)
	}
	return domain.PriceRange{Min: domain.PriceFromCents(lo), Max: domain.PriceFromCents(hi)}, nil
}

// ProductNames returns active product names containing text.
func (s *Store) ProductNames(ctx context.Context, text string, limit int) (_ []string, err error) {
	const stmt = `
		SELECT name
		FROM products
		WHERE is_active AND name ILIKE $1
		ORDER BY name
		LIMIT $2`

	ctx, end := database.TraceQuery(ctx, "ProductNames", stmt)
	defer func() { end(err) }()

	return s.queryStrings(ctx, stmt, "product names", query.LikePattern(text), limitArg(limit))
}

func (s *Store) queryStrings(ctx context.Context, stmt, what string, args ...any) ([]string, error) {
	rows, err := s.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
