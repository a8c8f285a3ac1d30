// Package guarded wraps a Catalog Store in a circuit breaker and maps
// collaborator failures onto the StoreUnavailable error.
package guarded

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/resilience"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
)

var _ repository.CatalogStore = (*Store)(nil)

// Store decorates another CatalogStore.
type Store struct {
	next    repository.CatalogStore
	breaker *resilience.Breaker
}

// New wraps next with breaker.
func New(next repository.CatalogStore, breaker *resilience.Breaker) *Store {
	return &Store{next: next, breaker: breaker}
}

// IsExpected reports errors that are normal answers rather than store
// failures; they never trip the breaker.
func IsExpected(err error) bool {
	return apperrors.IsClientError(err)
}

// call runs fn through the breaker. Taxonomy errors and caller cancellation
// pass through unchanged; anything else becomes StoreUnavailable.
func call[T any](ctx context.Context, s *Store, fn func(context.Context) (T, error)) (T, error) {
	out, err := resilience.Do(s.breaker, func() (T, error) {
		return fn(ctx)
	})
	if err == nil {
		return out, nil
	}
	var zero T
	var appErr *apperrors.AppError
	if IsExpected(err) || errors.As(err, &appErr) || errors.Is(err, context.Canceled) {
		return zero, err
	}
	return zero, apperrors.StoreUnavailable(err)
}

func (s *Store) ListProducts(ctx context.Context, pred query.Predicate, opts repository.ListOptions) ([]domain.Product, error) {
	return call(ctx, s, func(ctx context.Context) ([]domain.Product, error) {
		return s.next.ListProducts(ctx, pred, opts)
	})
}

func (s *Store) CountProducts(ctx context.Context, pred query.Predicate) (int, error) {
	return call(ctx, s, func(ctx context.Context) (int, error) {
		return s.next.CountProducts(ctx, pred)
	})
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return call(ctx, s, func(ctx context.Context) (*domain.Product, error) {
		return s.next.GetProduct(ctx, id)
	})
}

func (s *Store) GetCategory(ctx context.Context, idOrSlug string) (*domain.Category, error) {
	return call(ctx, s, func(ctx context.Context) (*domain.Category, error) {
		return s.next.GetCategory(ctx, idOrSlug)
	})
}

func (s *Store) RatingTotals(ctx context.Context, productIDs []string) (map[string]domain.RatingTotal, error) {
	return call(ctx, s, func(ctx context.Context) (map[string]domain.RatingTotal, error) {
		return s.next.RatingTotals(ctx, productIDs)
	})
}

func (s *Store) Popularity(ctx context.Context, productIDs []string) (map[string]int, error) {
	return call(ctx, s, func(ctx context.Context) (map[string]int, error) {
		return s.next.Popularity(ctx, productIDs)
	})
}

func (s *Store) Variants(ctx context.Context, productIDs []string) (map[string][]domain.Variant, error) {
	return call(ctx, s, func(ctx context.Context) (map[string][]domain.Variant, error) {
		return s.next.Variants(ctx, productIDs)
	})
}

func (s *Store) CategoryFacets(ctx context.Context) ([]domain.CategoryFacet, error) {
	return call(ctx, s, s.next.CategoryFacets)
}

func (s *Store) TagVocabulary(ctx context.Context) ([]string, error) {
	return call(ctx, s, s.next.TagVocabulary)
}

func (s *Store) PriceRange(ctx context.Context) (domain.PriceRange, error) {
	return call(ctx, s, s.next.PriceRange)
}

func (s *Store) ProductNames(ctx context.Context, text string, limit int) ([]string, error) {
	return call(ctx, s, func(ctx context.Context) ([]string, error) {
		return s.next.ProductNames(ctx, text, limit)
	})
}

func (s *Store) CoPurchased(ctx context.Context, productID string, limit int) ([]domain.ProductCount, error) {
	return call(ctx, s, func(ctx context.Context) ([]domain.ProductCount, error) {
		return s.next.CoPurchased(ctx, productID, limit)
	})
}

func (s *Store) TrendingSince(ctx context.Context, since time.Time, limit int) ([]domain.ProductCount, error) {
	return call(ctx, s, func(ctx context.Context) ([]domain.ProductCount, error) {
		return s.next.TrendingSince(ctx, since, limit)
	})
}

func (s *Store) PurchaseHistory(ctx context.Context, userID string) (domain.PurchaseHistory, error) {
	return call(ctx, s, func(ctx context.Context) (domain.PurchaseHistory, error) {
		return s.next.PurchaseHistory(ctx, userID)
	})
}
