// Package memory is an in-process Catalog Store used for development runs
// and service tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/demo"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
)

var _ repository.CatalogStore = (*Store)(nil)

// Store holds a catalog snapshot. Thread-safe via sync.RWMutex.
type Store struct {
	mu         sync.RWMutex
	categories []domain.Category
	products   []domain.Product
	reviews    []domain.Review
	orders     []domain.Order
}

// New creates a store holding ds. A nil dataset yields an empty catalog.
func New(ds *demo.Dataset) *Store {
	s := &Store{}
	if ds != nil {
		s.Replace(ds)
	}
	return s
}

// Replace swaps the whole snapshot.
func (s *Store) Replace(ds *demo.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = slices.Clone(ds.Categories)
	s.products = slices.Clone(ds.Products)
	s.reviews = slices.Clone(ds.Reviews)
	s.orders = slices.Clone(ds.Orders)
}

// --- ProductReader ---

// ListProducts filters, orders and windows the snapshot.
func (s *Store) ListProducts(_ context.Context, pred query.Predicate, opts repository.ListOptions) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.match(pred)
	slices.SortStableFunc(matched, func(a, b domain.Product) int {
		return query.Compare(opts.Order, &a, &b)
	})

	if opts.Offset < 0 || opts.Offset >= len(matched) {
		return []domain.Product{}, nil
	}
	matched = matched[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

// CountProducts returns the number of matches.
func (s *Store) CountProducts(_ context.Context, pred query.Predicate) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.match(pred)), nil
}

// GetProduct returns an active product by id.
func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id && s.products[i].IsActive {
			p := s.copyProduct(&s.products[i])
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", id)
}

// GetCategory returns a category by id or slug.
func (s *Store) GetCategory(_ context.Context, idOrSlug string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == idOrSlug || c.Slug == idOrSlug {
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("category", idOrSlug)
}

// --- AggregateReader ---

// RatingTotals sums review ratings per product.
func (s *Store) RatingTotals(_ context.Context, productIDs []string) (map[string]domain.RatingTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := set(productIDs)
	out := make(map[string]domain.RatingTotal)
	for _, r := range s.reviews {
		if _, ok := want[r.ProductID]; !ok {
			continue
		}
		t := out[r.ProductID]
		t.Sum += int64(r.Rating)
		t.Count++
		out[r.ProductID] = t
	}
	return out, nil
}

// Popularity counts all-time order items per product.
func (s *Store) Popularity(_ context.Context, productIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := set(productIDs)
	out := make(map[string]int)
	for _, o := range s.orders {
		for _, it := range o.Items {
			if _, ok := want[it.ProductID]; ok {
				out[it.ProductID]++
			}
		}
	}
	return out, nil
}

// Variants returns each product's variants.
func (s *Store) Variants(_ context.Context, productIDs []string) (map[string][]domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := set(productIDs)
	out := make(map[string][]domain.Variant)
	for _, p := range s.products {
		if _, ok := want[p.ID]; ok && len(p.Variants) > 0 {
			out[p.ID] = slices.Clone(p.Variants)
		}
	}
	return out, nil
}

// --- FacetReader ---

// CategoryFacets lists every category with its active product count.
func (s *Store) CategoryFacets(_ context.Context) ([]domain.CategoryFacet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range s.products {
		if p.IsActive {
			counts[p.CategoryID]++
		}
	}
	out := make([]domain.CategoryFacet, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, domain.CategoryFacet{
			ID:           c.ID,
			Slug:         c.Slug,
			Name:         c.Name,
			ParentID:     c.ParentID,
			ProductCount: counts[c.ID],
		})
	}
	slices.SortFunc(out, func(a, b domain.CategoryFacet) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

// TagVocabulary returns the sorted distinct lowercase tags of active products.
func (s *Store) TagVocabulary(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		for _, t := range domain.NormalizeTags(p.Tags) {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	slices.Sort(out)
	return out, nil
}

// PriceRange returns the min and max active price.
func (s *Store) PriceRange(_ context.Context) (domain.PriceRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r domain.PriceRange
	first := true
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if first {
			r.Min, r.Max = p.Price, p.Price
			first = false
			continue
		}
		if p.Price.LessThan(r.Min.Decimal) {
			r.Min = p.Price
		}
		if p.Price.GreaterThan(r.Max.Decimal) {
			r.Max = p.Price
		}
	}
	return r, nil
}

// ProductNames returns names of active products containing text, A to Z.
func (s *Store) ProductNames(_ context.Context, text string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text = strings.ToLower(text)
	names := []string{}
	for _, p := range s.products {
		if p.IsActive && strings.Contains(strings.ToLower(p.Name), text) {
			names = append(names, p.Name)
		}
	}
	slices.Sort(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// --- OrderReader ---

// CoPurchased counts distinct orders shared with productID.
func (s *Store) CoPurchased(_ context.Context, productID string, limit int) ([]domain.ProductCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, o := range s.orders {
		inOrder := make(map[string]struct{})
		for _, it := range o.Items {
			inOrder[it.ProductID] = struct{}{}
		}
		if _, ok := inOrder[productID]; !ok {
			continue
		}
		for id := range inOrder {
			if id != productID && s.isActive(id) {
				counts[id]++
			}
		}
	}
	return rankCounts(counts, limit), nil
}

// TrendingSince counts order items created at or after since.
func (s *Store) TrendingSince(_ context.Context, since time.Time, limit int) ([]domain.ProductCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, o := range s.orders {
		for _, it := range o.Items {
			if !it.CreatedAt.Before(since) && s.isActive(it.ProductID) {
				counts[it.ProductID]++
			}
		}
	}
	return rankCounts(counts, limit), nil
}

// PurchaseHistory collects the categories and tags of everything userID bought.
func (s *Store) PurchaseHistory(_ context.Context, userID string) (domain.PurchaseHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cats := make(map[string]struct{})
	var tags []string
	for _, o := range s.orders {
		if o.UserID != userID {
			continue
		}
		for _, it := range o.Items {
			p := s.find(it.ProductID)
			if p == nil {
				continue
			}
			cats[p.CategoryID] = struct{}{}
			tags = append(tags, p.Tags...)
		}
	}
	h := domain.PurchaseHistory{Tags: domain.NormalizeTags(tags)}
	for id := range cats {
		h.CategoryIDs = append(h.CategoryIDs, id)
	}
	slices.Sort(h.CategoryIDs)
	slices.Sort(h.Tags)
	return h, nil
}

// --- helpers ---

func (s *Store) match(pred query.Predicate) []domain.Product {
	out := make([]domain.Product, 0)
	if pred.Empty {
		return out
	}
	for i := range s.products {
		if pred.Matches(&s.products[i]) {
			out = append(out, s.copyProduct(&s.products[i]))
		}
	}
	return out
}

// copyProduct returns p without variants, matching what the SQL listing
// returns before variants are attached.
func (s *Store) copyProduct(p *domain.Product) domain.Product {
	out := *p
	out.Tags = slices.Clone(p.Tags)
	out.Variants = []domain.Variant{}
	if p.Category != nil {
		ref := *p.Category
		out.Category = &ref
	}
	return out
}

func (s *Store) find(id string) *domain.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

func (s *Store) isActive(id string) bool {
	p := s.find(id)
	return p != nil && p.IsActive
}

func rankCounts(counts map[string]int, limit int) []domain.ProductCount {
	out := make([]domain.ProductCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, domain.ProductCount{ProductID: id, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.ProductCount) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.ProductID, b.ProductID))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func set(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
