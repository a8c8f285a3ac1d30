package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/pagination"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
)

const (
	// TrendingWindow is how far back order items count towards trending.
	TrendingWindow = 30 * 24 * time.Hour
	// MaxBoughtTogether caps frequently-bought-together panels.
	MaxBoughtTogether = 6
)

// errFallback signals that a mode could not be served and featured products
// should be returned instead. reason is recorded in metrics.
type errFallback struct{ reason string }

func (e errFallback) Error() string { return "fall back to featured: " + e.reason }

// Recommend returns a panel of products for the requested mode. Modes that
// lack a usable seed, and unknown modes, are answered with featured products;
// the returned Mode is the one actually used.
func (s *CatalogService) Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.Recommendation, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = pagination.DefaultPanelLimit
	}
	if limit > pagination.MaxPanelLimit {
		limit = pagination.MaxPanelLimit
	}

	mode, ok := domain.ParseMode(req.RawMode)
	if !ok {
		if req.RawMode != "" {
			s.logger.WarnContext(ctx, "unknown recommendation type, falling back to featured",
				slog.String("type", req.RawMode),
			)
			s.metrics.fallback(unknownModeLabel, "unknown_type")
		}
		mode = domain.ModeFeatured
	}

	products, err := s.recommend(ctx, mode, req, limit)
	var fb errFallback
	if errors.As(err, &fb) {
		s.logger.InfoContext(ctx, "recommendation falling back to featured",
			slog.String("type", string(mode)),
			slog.String("reason", fb.reason),
		)
		s.metrics.fallback(string(mode), fb.reason)
		mode = domain.ModeFeatured
		products, err = s.featured(ctx, limit)
	}
	if err != nil {
		return nil, err
	}

	if err := s.decorate(ctx, products, false); err != nil {
		return nil, err
	}
	s.metrics.recommendation(string(mode))

	return &domain.Recommendation{Mode: mode, Products: products}, nil
}

func (s *CatalogService) recommend(ctx context.Context, mode domain.Mode, req domain.RecommendRequest, limit int) ([]domain.Product, error) {
	switch mode {
	case domain.ModeSimilar:
		return s.similar(ctx, req.ProductID, limit)
	case domain.ModeFrequentlyBoughtTogether:
		return s.boughtTogether(ctx, req.ProductID, min(limit, MaxBoughtTogether))
	case domain.ModeTrending:
		return s.trending(ctx, limit)
	case domain.ModePersonalized:
		return s.personalized(ctx, req.UserID, limit)
	case domain.ModeCategory:
		return s.category(ctx, req.CategoryID, limit)
	default:
		return s.featured(ctx, limit)
	}
}

// featured lists active featured products, newest first.
func (s *CatalogService) featured(ctx context.Context, limit int) ([]domain.Product, error) {
	items, err := s.store.ListProducts(ctx, query.Predicate{FeaturedOnly: true}, repository.ListOptions{
		Order: query.Newest(),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list featured: %w", err)
	}
	return items, nil
}

// seed loads the product a seeded mode is anchored on.
func (s *CatalogService) seed(ctx context.Context, productID string) (*domain.Product, error) {
	if productID == "" {
		return nil, errFallback{reason: "missing_product"}
	}
	p, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, errFallback{reason: "product_not_found"}
	}
	if err != nil {
		return nil, fmt.Errorf("load seed product: %w", err)
	}
	return p, nil
}

// similar lists other products in the seed's category, featured first.
func (s *CatalogService) similar(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	seed, err := s.seed(ctx, productID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListProducts(ctx, query.Predicate{
		CategoryIDs: []string{seed.CategoryID},
		ExcludeIDs:  []string{seed.ID},
	}, repository.ListOptions{Order: query.FeaturedFirst(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list similar: %w", err)
	}
	return items, nil
}

// boughtTogether ranks products by the number of distinct orders they share
// with the seed.
func (s *CatalogService) boughtTogether(ctx context.Context, productID string, limit int) ([]domain.Product, error) {
	seed, err := s.seed(ctx, productID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CoPurchased(ctx, seed.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("load co-purchases: %w", err)
	}
	return s.inCountOrder(ctx, counts)
}

// trending ranks products by order items in the trailing window.
func (s *CatalogService) trending(ctx context.Context, limit int) ([]domain.Product, error) {
	since := s.now().Add(-TrendingWindow)
	counts, err := s.store.TrendingSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("load trending: %w", err)
	}
	return s.inCountOrder(ctx, counts)
}

// personalized picks products from categories the shopper has bought from,
// featured first, then by tags shared with their purchases.
func (s *CatalogService) personalized(ctx context.Context, userID string, limit int) ([]domain.Product, error) {
	if userID == "" {
		return nil, errFallback{reason: "missing_user"}
	}
	history, err := s.store.PurchaseHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load purchase history: %w", err)
	}
	if history.Empty() {
		return nil, errFallback{reason: "no_history"}
	}

	items, err := s.store.ListProducts(ctx, query.Predicate{CategoryIDs: history.CategoryIDs},
		repository.ListOptions{Order: query.FeaturedFirst()})
	if err != nil {
		return nil, fmt.Errorf("list personalized: %w", err)
	}

	liked := make(map[string]struct{}, len(history.Tags))
	for _, t := range history.Tags {
		liked[t] = struct{}{}
	}
	shared := make(map[string]int, len(items))
	for _, p := range items {
		for _, t := range domain.NormalizeTags(p.Tags) {
			if _, ok := liked[t]; ok {
				shared[p.ID]++
			}
		}
	}

	featuredFirst := query.FeaturedFirst()
	slices.SortStableFunc(items, func(a, b domain.Product) int {
		if a.IsFeatured != b.IsFeatured {
			if a.IsFeatured {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(shared[b.ID], shared[a.ID]); c != 0 {
			return c
		}
		return query.Compare(featuredFirst, &a, &b)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// category lists a category's products, featured first. The category may be
// given by id or slug.
func (s *CatalogService) category(ctx context.Context, categoryID string, limit int) ([]domain.Product, error) {
	if categoryID == "" {
		return nil, errFallback{reason: "missing_category"}
	}
	cat, err := s.store.GetCategory(ctx, categoryID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, errFallback{reason: "category_not_found"}
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}
	items, err := s.store.ListProducts(ctx, query.Predicate{CategoryIDs: []string{cat.ID}},
		repository.ListOptions{Order: query.FeaturedFirst(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list category: %w", err)
	}
	return items, nil
}

// inCountOrder loads the counted products and returns them in counts order.
func (s *CatalogService) inCountOrder(ctx context.Context, counts []domain.ProductCount) ([]domain.Product, error) {
	if len(counts) == 0 {
		return []domain.Product{}, nil
	}
	ids := make([]string, len(counts))
	for i, c := range counts {
		ids[i] = c.ProductID
	}
	items, err := s.store.ListProducts(ctx, query.Predicate{IDs: ids}, repository.ListOptions{
		Order: []query.Term{{Field: query.FieldID}},
	})
	if err != nil {
		return nil, fmt.Errorf("list counted products: %w", err)
	}

	byID := make(map[string]domain.Product, len(items))
	for _, p := range items {
		byID[p.ID] = p
	}
	out := make([]domain.Product, 0, len(counts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
