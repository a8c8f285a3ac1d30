// Package repository declares the Catalog Store contracts.
package repository

import (
	"context"
	"time"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
)

// ListOptions controls ordering and windowing of ListProducts. A zero Limit
// returns every match.
type ListOptions struct {
	Order  []query.Term
	Limit  int
	Offset int
}

// ProductReader fetches products matching a predicate.
type ProductReader interface {
	ListProducts(ctx context.Context, pred query.Predicate, opts ListOptions) ([]domain.Product, error)
	CountProducts(ctx context.Context, pred query.Predicate) (int, error)
	// GetProduct returns an active product or a NotFound error.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	// GetCategory resolves a category by id or slug, or returns NotFound.
	GetCategory(ctx context.Context, idOrSlug string) (*domain.Category, error)
}

// AggregateReader loads per-product aggregates for a set of ids. Products
// without any rows are absent from the result maps.
type AggregateReader interface {
	RatingTotals(ctx context.Context, productIDs []string) (map[string]domain.RatingTotal, error)
	Popularity(ctx context.Context, productIDs []string) (map[string]int, error)
	Variants(ctx context.Context, productIDs []string) (map[string][]domain.Variant, error)
}

// FacetReader describes the whole active catalog.
type FacetReader interface {
	CategoryFacets(ctx context.Context) ([]domain.CategoryFacet, error)
	TagVocabulary(ctx context.Context) ([]string, error)
	PriceRange(ctx context.Context) (domain.PriceRange, error)
	// ProductNames returns names of active products containing text.
	ProductNames(ctx context.Context, text string, limit int) ([]string, error)
}

// OrderReader answers purchase-history questions.
type OrderReader interface {
	// CoPurchased counts distinct orders in which each other active product
	// appears together with productID.
	CoPurchased(ctx context.Context, productID string, limit int) ([]domain.ProductCount, error)
	// TrendingSince counts order items per active product created at or after since.
	TrendingSince(ctx context.Context, since time.Time, limit int) ([]domain.ProductCount, error)
	PurchaseHistory(ctx context.Context, userID string) (domain.PurchaseHistory, error)
}

// CatalogStore is the full read surface the catalog service depends on.
type CatalogStore interface {
	ProductReader
	AggregateReader
	FacetReader
	OrderReader
}
