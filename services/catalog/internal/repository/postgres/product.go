package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/database"
	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
)

const productColumns = `
		SELECT p.id, p.slug, p.name, p.description, p.price_cents, p.compare_price_cents,
			   p.sku, p.quantity, p.tags, p.is_active, p.is_featured, p.is_digital,
			   p.category_id, c.slug, c.name, p.created_at, p.updated_at`

// ListProducts returns active products matching pred in the requested order.
func (s *Store) ListProducts(ctx context.Context, pred query.Predicate, opts repository.ListOptions) (_ []domain.Product, err error) {
	if pred.Empty {
		return []domain.Product{}, nil
	}

	where, args := buildWhere(pred)
	stmt := fmt.Sprintf("%s%s\n\t\t%s\n\t\t%s", productColumns, productFrom, where, buildOrder(opts.Order))
	if opts.Limit > 0 {
		stmt += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		stmt += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, opts.Offset)
	}

	ctx, end := database.TraceQuery(ctx, "ListProducts", stmt)
	defer func() { end(err) }()

	rows, err := s.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// CountProducts returns the number of active products matching pred.
func (s *Store) CountProducts(ctx context.Context, pred query.Predicate) (_ int, err error) {
	if pred.Empty {
		return 0, nil
	}

	where, args := buildWhere(pred)
	stmt := "\n\t\tSELECT COUNT(*)" + productFrom + "\n\t\t" + where

	ctx, end := database.TraceQuery(ctx, "CountProducts", stmt)
	defer func() { end(err) }()

	var n int
	if err := s.db.QueryRow(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// GetProduct returns an active product by id.
func (s *Store) GetProduct(ctx context.Context, id string) (_ *domain.Product, err error) {
	stmt := productColumns + productFrom + `
		WHERE p.id = $1 AND p.is_active`

	ctx, end := database.TraceQuery(ctx, "GetProduct", stmt)
	defer func() { end(err) }()

	p, err := scanProduct(s.db.QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, err
	}
	return p, nil
}

// GetCategory returns a category by id or slug.
func (s *Store) GetCategory(ctx context.Context, idOrSlug string) (_ *domain.Category, err error) {
	const stmt = `
		SELECT id, slug, name, description, parent_id
		FROM categories
		WHERE id = $1 OR slug = $1
		LIMIT 1`

	ctx, end := database.TraceQuery(ctx, "GetCategory", stmt)
	defer func() { end(err) }()

	var c domain.Category
	err = s.db.QueryRow(ctx, stmt, idOrSlug).Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.ParentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("category", idOrSlug)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// scanProduct reads one row selected with productColumns.
func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p            domain.Product
		ref          domain.CategoryRef
		priceCents   int64
		compareCents *int64
		tags         string
	)

	err := row.Scan(
		&p.ID,
		&p.Slug,
		&p.Name,
		&p.Description,
		&priceCents,
		&compareCents,
		&p.SKU,
		&p.Quantity,
		&tags,
		&p.IsActive,
		&p.IsFeatured,
		&p.IsDigital,
		&p.CategoryID,
		&ref.Slug,
		&ref.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product row: %w", err)
	}

	p.Price = domain.PriceFromCents(priceCents)
	if compareCents != nil {
		cp := domain.PriceFromCents(*compareCents)
		p.ComparePrice = &cp
	}
	p.Tags = domain.SplitTags(tags)
	ref.ID = p.CategoryID
	p.Category = &ref
	p.Variants = []domain.Variant{}
	return &p, nil
}
