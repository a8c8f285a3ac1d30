package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/pagination"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
)

// SearchInput is a validated search request.
type SearchInput struct {
	Filter domain.FilterSpec
	Sort   domain.SortSpec
	Page   pagination.Params
}

// SearchResult is everything the search endpoint returns.
type SearchResult struct {
	Products    []domain.Product
	Pagination  pagination.Meta
	Suggestions []string
	Facets      domain.Facets
}

// Search filters, ranks and pages the catalog. The listing, the facets and
// (for text queries) name suggestions are read concurrently; any failure
// fails the whole request.
func (s *CatalogService) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	compiled := query.Compile(in.Filter)
	ranking := query.Rank(in.Sort, compiled.Predicate.HasText())
	s.metrics.search(string(in.Sort.Key))

	var (
		items  []domain.Product
		total  int
		facets domain.Facets
		names  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, total, err = s.list(gctx, compiled, ranking, in.Page)
		return err
	})
	g.Go(func() error {
		var err error
		facets, err = s.Facets(gctx)
		return err
	})
	if compiled.Predicate.HasText() {
		g.Go(func() error {
			var err error
			names, err = s.store.ProductNames(gctx, compiled.Predicate.Text, maxSuggestions)
			if err != nil {
				return fmt.Errorf("suggest names: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SearchResult{
		Products:   items,
		Pagination: pagination.NewMeta(in.Page, total),
		Facets:     facets,
	}
	if compiled.Predicate.HasText() {
		result.Suggestions = mergeSuggestions(compiled.Predicate.Text, names, facets.Tags)
	}

	s.logger.DebugContext(ctx, "search served",
		slog.String("q", compiled.Predicate.Text),
		slog.String("sort_by", string(in.Sort.Key)),
		slog.Int("total", total),
		slog.Int("page", in.Page.Page),
	)

	return result, nil
}

// list returns one page of decorated products and the total match count.
func (s *CatalogService) list(ctx context.Context, c query.Compiled, r query.Ranking, page pagination.Params) ([]domain.Product, int, error) {
	if c.Predicate.Empty {
		return []domain.Product{}, 0, nil
	}
	if c.RatingFloor == nil && !r.NeedsPostFetch() {
		return s.listWindowed(ctx, c.Predicate, r, page)
	}
	return s.listAggregated(ctx, c, r, page)
}

// listWindowed lets the store order and window the matches.
func (s *CatalogService) listWindowed(ctx context.Context, pred query.Predicate, r query.Ranking, page pagination.Params) ([]domain.Product, int, error) {
	var (
		items []domain.Product
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.store.ListProducts(gctx, pred, repository.ListOptions{
			Order:  r.Terms,
			Limit:  page.Limit,
			Offset: page.Offset(),
		})
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountProducts(gctx, pred)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if err := s.decorate(ctx, items, true); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// listAggregated fetches every match, applies the rating floor and any
// aggregate ordering, then windows. The total counts post-floor matches.
func (s *CatalogService) listAggregated(ctx context.Context, c query.Compiled, r query.Ranking, page pagination.Params) ([]domain.Product, int, error) {
	all, err := s.store.ListProducts(ctx, c.Predicate, repository.ListOptions{Order: r.Terms})
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if err := s.decorate(ctx, all, false); err != nil {
		return nil, 0, err
	}

	all = query.ApplyRatingFloor(all, c.RatingFloor)

	if r.NeedsPostFetch() {
		var popularity map[string]int
		if r.PostFetch == domain.SortPopularity {
			popularity, err = s.store.Popularity(ctx, productIDs(all))
			if err != nil {
				return nil, 0, fmt.Errorf("load popularity: %w", err)
			}
		}
		query.SortPostFetch(all, r, popularity)
	}

	window := pagination.Window(all, page)
	if err := s.attachVariants(ctx, window); err != nil {
		return nil, 0, err
	}
	return window, len(all), nil
}

// Facets returns the catalog-wide facets, through the facet source when set.
func (s *CatalogService) Facets(ctx context.Context) (domain.Facets, error) {
	if s.facets != nil {
		return s.facets.Get(ctx, s.loadFacets)
	}
	return s.loadFacets(ctx)
}

func (s *CatalogService) loadFacets(ctx context.Context) (domain.Facets, error) {
	var f domain.Facets

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		f.Categories, err = s.store.CategoryFacets(gctx)
		if err != nil {
			return fmt.Errorf("category facets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		f.Tags, err = s.store.TagVocabulary(gctx)
		if err != nil {
			return fmt.Errorf("tag vocabulary: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		f.PriceRange, err = s.store.PriceRange(gctx)
		if err != nil {
			return fmt.Errorf("price range: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Facets{}, err
	}
	return f, nil
}
