package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/logger"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/pagination"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/demo"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/query"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/repository/memory"
)

var now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func newTestService(t *testing.T, opts ...Option) (*CatalogService, *demo.Dataset) {
	t.Helper()
	ds := demo.Build(now)
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewCatalogService(memory.New(ds), logger.Discard(), opts...), ds
}

func page(t *testing.T, p, limit int) pagination.Params {
	t.Helper()
	params, err := pagination.New(p, limit, pagination.MaxListingLimit)
	require.NoError(t, err)
	return params
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func names(items []domain.Product) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Name
	}
	return out
}

// ─── search ─────────────────────────────────────────────────────────────────

func TestSearch_TextMatchesDescription(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Search(context.Background(), SearchInput{
		Filter: domain.FilterSpec{Text: "bead"},
		Sort:   domain.DefaultSort(),
		Page:   page(t, 1, 12),
	})
	require.NoError(t, err)
	assert.Contains(t, names(res.Products), "Premium Amber Tasbih")
	assert.NotContains(t, names(res.Products), "Wooden Cross")
	assert.Equal(t, len(res.Products), res.Pagination.Total)

	// Relevance with text puts featured products first.
	require.NotEmpty(t, res.Products)
	assert.True(t, res.Products[0].IsFeatured)
	assert.NotNil(t, res.Suggestions)
}

func TestSearch_PriceBoundsInvertedIsEmptyNotError(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Search(context.Background(), SearchInput{
		Filter: domain.FilterSpec{PriceMin: dec("50"), PriceMax: dec("10")},
		Sort:   domain.DefaultSort(),
		Page:   page(t, 1, 12),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.NotNil(t, res.Products)
	assert.Equal(t, 0, res.Pagination.Total)
	assert.Equal(t, 0, res.Pagination.TotalPages)
	assert.False(t, res.Pagination.HasNext)
	assert.NotEmpty(t, res.Facets.Categories, "facets still describe the catalog")
}

func TestSearch_PaginationWindows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	sortSpec := domain.SortSpec{Key: domain.SortPrice, Order: domain.Asc}

	var seen []string
	for p := 1; p <= 3; p++ {
		res, err := svc.Search(ctx, SearchInput{Sort: sortSpec, Page: page(t, p, 5)})
		require.NoError(t, err)
		assert.Equal(t, 11, res.Pagination.Total)
		assert.Equal(t, 3, res.Pagination.TotalPages)
		assert.Equal(t, p < 3, res.Pagination.HasNext)
		assert.Equal(t, p > 1, res.Pagination.HasPrev)
		seen = append(seen, names(res.Products)...)
	}
	assert.Len(t, seen, 11)

	beyond, err := svc.Search(ctx, SearchInput{Sort: sortSpec, Page: page(t, 9, 5)})
	require.NoError(t, err)
	assert.Empty(t, beyond.Products)
	assert.False(t, beyond.Pagination.HasNext)
	assert.True(t, beyond.Pagination.HasPrev)
}

func TestSearch_FilterIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	in := SearchInput{
		Filter: domain.FilterSpec{Tags: []string{"catholic", "jewish"}, InStockOnly: true},
		Sort:   domain.SortSpec{Key: domain.SortName, Order: domain.Asc},
		Page:   page(t, 1, 12),
	}

	first, err := svc.Search(context.Background(), in)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Brass Hamsa Wall Hanging", "Menorah Candle Set", "Olive Wood Rosary", "Silver Crucifix Pendant"}, names(first.Products))
}

func TestSearch_DecoratesStatsAndVariants(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Search(context.Background(), SearchInput{
		Filter: domain.FilterSpec{Text: "amber tasbih"},
		Sort:   domain.DefaultSort(),
		Page:   page(t, 1, 12),
	})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	p := res.Products[0]
	assert.Equal(t, domain.ProductStats{AverageRating: 4.3, ReviewCount: 4}, p.ProductStats)
	assert.Len(t, p.Variants, 2)
}

func TestSearch_RatingFloorCountsAfterFiltering(t *testing.T) {
	svc, _ := newTestService(t)
	floor := 4.5

	res, err := svc.Search(context.Background(), SearchInput{
		Filter: domain.FilterSpec{RatingFloor: &floor},
		Sort:   domain.DefaultSort(),
		Page:   page(t, 1, 1),
	})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, 2, res.Pagination.Total)
	assert.Equal(t, 2, res.Pagination.TotalPages)
	assert.True(t, res.Pagination.HasNext)
	assert.GreaterOrEqual(t, res.Products[0].AverageRating, floor)
}

func TestSearch_SortByRating(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Search(context.Background(), SearchInput{
		Sort: domain.SortSpec{Key: domain.SortRating, Order: domain.Desc},
		Page: page(t, 1, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Byzantine Icon of Christ Pantocrator", "Olive Wood Rosary", "Premium Amber Tasbih"}, names(res.Products))
	assert.Equal(t, 11, res.Pagination.Total)
}

func TestSearch_SortByPopularity(t *testing.T) {
	svc, ds := newTestService(t)

	res, err := svc.Search(context.Background(), SearchInput{
		Sort: domain.SortSpec{Key: domain.SortPopularity, Order: domain.Desc},
		Page: page(t, 1, 12),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Products)
	assert.Equal(t, "Premium Amber Tasbih", res.Products[0].Name)

	// Frankincense and the wooden cross both sold twice; id breaks the tie.
	frank, cross := ds.Product("Frankincense Resin").ID, ds.Product("Wooden Cross").ID
	want := []string{frank, cross}
	if cross < frank {
		want = []string{cross, frank}
	}
	assert.Equal(t, want, []string{res.Products[1].ID, res.Products[2].ID})
}

func TestSearch_SuggestionsMergeNamesAndTags(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Search(context.Background(), SearchInput{
		Filter: domain.FilterSpec{Text: "wood"},
		Sort:   domain.DefaultSort(),
		Page:   page(t, 1, 12),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Olive Wood Rosary", "Sandalwood Mala Bracelet", "Wooden Cross", "olive-wood", "sandalwood", "wood"}, res.Suggestions)

	none, err := svc.Search(context.Background(), SearchInput{Sort: domain.DefaultSort(), Page: page(t, 1, 12)})
	require.NoError(t, err)
	assert.Nil(t, none.Suggestions)
}

type stubFacets struct{ calls int }

func (s *stubFacets) Get(_ context.Context, _ func(context.Context) (domain.Facets, error)) (domain.Facets, error) {
	s.calls++
	return domain.Facets{Tags: []string{"cached"}}, nil
}

func TestSearch_UsesFacetSource(t *testing.T) {
	src := &stubFacets{}
	svc, _ := newTestService(t, WithFacetSource(src))

	res, err := svc.Search(context.Background(), SearchInput{Sort: domain.DefaultSort(), Page: page(t, 1, 12)})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, []string{"cached"}, res.Facets.Tags)
}

// failingFacets fails facet reads while listings succeed.
type failingFacets struct {
	repository.CatalogStore
}

func (failingFacets) TagVocabulary(context.Context) ([]string, error) {
	return nil, apperrors.StoreUnavailable(errors.New("connection refused"))
}

func TestSearch_StoreFailureFailsWholeRequest(t *testing.T) {
	ds := demo.Build(now)
	svc := NewCatalogService(failingFacets{memory.New(ds)}, logger.Discard())

	res, err := svc.Search(context.Background(), SearchInput{Sort: domain.DefaultSort(), Page: page(t, 1, 12)})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

func TestSearch_RecordsSortMetric(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	svc, _ := newTestService(t, WithMetrics(m))

	_, err := svc.Search(context.Background(), SearchInput{Sort: domain.SortSpec{Key: domain.SortName, Order: domain.Asc}, Page: page(t, 1, 12)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues("name")))
}

func TestMergeSuggestions(t *testing.T) {
	got := mergeSuggestions("am", []string{"Amber Tasbih", "amber tasbih"}, []string{"amber", "AMBER TASBIH", "islamic", "hamsa"})
	assert.Equal(t, []string{"Amber Tasbih", "amber", "islamic", "hamsa"}, got)

	many := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7"}
	got = mergeSuggestions("a", many, []string{"a8", "a9"})
	assert.Len(t, got, maxSuggestions)
	assert.Equal(t, "a8", got[7])
}

// ─── recommendations ────────────────────────────────────────────────────────

func TestRecommend_Featured(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "featured"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFeatured, rec.Mode)
	assert.Equal(t, []string{"Olive Wood Rosary", "Premium Amber Tasbih", "Silver Crucifix Pendant", "Byzantine Icon of Christ Pantocrator"}, names(rec.Products))
	assert.Equal(t, 4.3, rec.Products[1].AverageRating)
}

func TestRecommend_PersonalizedWithoutHistoryEqualsFeatured(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, user := range []string{demo.UserID("newcomer"), ""} {
		personalized, err := svc.Recommend(ctx, domain.RecommendRequest{RawMode: "personalized", UserID: user, Limit: 3})
		require.NoError(t, err)
		featured, err := svc.Recommend(ctx, domain.RecommendRequest{RawMode: "featured", Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, featured.Products, personalized.Products)
		assert.Equal(t, domain.ModeFeatured, personalized.Mode)
	}
}

func TestRecommend_Personalized(t *testing.T) {
	svc, ds := newTestService(t)

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "personalized", UserID: demo.UserID("ruth")})
	require.NoError(t, err)
	assert.Equal(t, domain.ModePersonalized, rec.Mode)

	allowed := map[string]bool{}
	for _, name := range []string{"Premium Amber Tasbih", "Wooden Cross", "Byzantine Icon of Christ Pantocrator"} {
		allowed[ds.Product(name).CategoryID] = true
	}
	seenPlain := false
	for _, p := range rec.Products {
		assert.True(t, allowed[p.CategoryID], "%s is in a purchased category", p.Name)
		if !p.IsFeatured {
			seenPlain = true
		} else {
			assert.False(t, seenPlain, "featured products come first")
		}
	}
}

func TestRecommend_UnknownTypeFallsBackWithWarning(t *testing.T) {
	var buf bytes.Buffer
	m := NewMetrics(prometheus.NewRegistry())
	ds := demo.Build(now)
	svc := NewCatalogService(memory.New(ds), logger.NewWithWriter("catalog", "debug", &buf), WithMetrics(m))

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "random", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFeatured, rec.Mode)
	assert.Len(t, rec.Products, 2)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "unknown recommendation type")
	assert.Contains(t, buf.String(), `"type":"random"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues(unknownModeLabel, "unknown_type")))
}

func TestRecommend_UnknownTypesShareOneSeries(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	svc, _ := newTestService(t, WithMetrics(m))

	for i := range 50 {
		_, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: fmt.Sprintf("mode-%d", i), Limit: 1})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, testutil.CollectAndCount(m.fallbacks))
	assert.Equal(t, 50.0, testutil.ToFloat64(m.fallbacks.WithLabelValues(unknownModeLabel, "unknown_type")))
}

func TestRecommend_Similar(t *testing.T) {
	svc, ds := newTestService(t)
	seed := ds.Product("Premium Amber Tasbih")

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "similar", ProductID: seed.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSimilar, rec.Mode)
	assert.Equal(t, []string{"Olive Wood Rosary", "Sandalwood Mala Bracelet"}, names(rec.Products))
}

func TestRecommend_SeededModesFallBackForMissingSeed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	featured, err := svc.Recommend(ctx, domain.RecommendRequest{RawMode: "featured"})
	require.NoError(t, err)

	for _, req := range []domain.RecommendRequest{
		{RawMode: "similar"},
		{RawMode: "similar", ProductID: "does-not-exist"},
		{RawMode: "frequently_bought_together", ProductID: "does-not-exist"},
		{RawMode: "category"},
		{RawMode: "category", CategoryID: "no-such-category"},
	} {
		rec, err := svc.Recommend(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, domain.ModeFeatured, rec.Mode, "%+v", req)
		assert.Equal(t, featured.Products, rec.Products)
	}
}

func TestRecommend_Category(t *testing.T) {
	svc, _ := newTestService(t)

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "category", CategoryID: "crosses-and-crucifixes"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeCategory, rec.Mode)
	assert.Equal(t, []string{"Silver Crucifix Pendant", "Wooden Cross"}, names(rec.Products))
}

func TestRecommend_LimitBounds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Recommend(ctx, domain.RecommendRequest{RawMode: "category", CategoryID: "prayer-beads", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rec.Products, 1)

	rec, err = svc.Recommend(ctx, domain.RecommendRequest{RawMode: "trending", Limit: 500})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(rec.Products), pagination.MaxPanelLimit)
}

// ─── scenario fixtures ──────────────────────────────────────────────────────

func scenarioProduct(id string, created time.Time) domain.Product {
	return domain.Product{
		ID:         id,
		Slug:       id,
		Name:       "Product " + id,
		Price:      domain.PriceFromCents(1000),
		IsActive:   true,
		Quantity:   5,
		CategoryID: "cat-1",
		Category:   &domain.CategoryRef{ID: "cat-1", Slug: "gifts", Name: "Gifts"},
		CreatedAt:  created,
	}
}

func order(id string, at time.Time, productIDs ...string) domain.Order {
	o := domain.Order{ID: id, UserID: "user-" + id, CreatedAt: at}
	for _, pid := range productIDs {
		o.Items = append(o.Items, domain.OrderItem{ID: id + "-" + pid, ProductID: pid, Quantity: 1, PriceCents: 1000, CreatedAt: at})
	}
	return o
}

func scenarioService(orders ...domain.Order) *CatalogService {
	ds := &demo.Dataset{
		Categories: []domain.Category{{ID: "cat-1", Slug: "gifts", Name: "Gifts"}},
		Products: []domain.Product{
			scenarioProduct("a", now.AddDate(0, -3, 0)),
			scenarioProduct("b", now.AddDate(0, -2, 0)),
			scenarioProduct("c", now.AddDate(0, -1, 0)),
		},
		Orders: orders,
	}
	return NewCatalogService(memory.New(ds), logger.Discard(), WithClock(fixedClock))
}

func TestRecommend_FrequentlyBoughtTogetherRanking(t *testing.T) {
	day := -24 * time.Hour
	svc := scenarioService(
		order("1", now.Add(3*day), "a", "b"),
		order("2", now.Add(2*day), "a", "b", "c"),
		order("3", now.Add(day), "a"),
	)

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "frequently_bought_together", ProductID: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFrequentlyBoughtTogether, rec.Mode)
	require.Len(t, rec.Products, 2)
	assert.Equal(t, "b", rec.Products[0].ID)
	assert.Equal(t, "c", rec.Products[1].ID)
}

func TestRecommend_FrequentlyBoughtTogetherWithoutCoPurchases(t *testing.T) {
	svc := scenarioService(order("1", now, "a"))

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "frequently_bought_together", ProductID: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFrequentlyBoughtTogether, rec.Mode)
	assert.Empty(t, rec.Products)
	assert.NotNil(t, rec.Products)
}

func TestRecommend_TrendingWindow(t *testing.T) {
	svc := scenarioService(
		order("old", now.AddDate(0, 0, -40), "a"),
		order("recent", now.AddDate(0, 0, -5), "b"),
	)

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "trending"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeTrending, rec.Mode)
	require.Len(t, rec.Products, 1)
	assert.Equal(t, "b", rec.Products[0].ID)
}

func TestRecommend_TrendingOrdersByCount(t *testing.T) {
	svc := scenarioService(
		order("1", now.AddDate(0, 0, -1), "c"),
		order("2", now.AddDate(0, 0, -2), "b", "c"),
		order("3", now.AddDate(0, 0, -3), "a", "b", "c"),
	)

	rec, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "trending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, []string{rec.Products[0].ID, rec.Products[1].ID, rec.Products[2].ID})
}

func TestRecommend_StoreErrorPropagates(t *testing.T) {
	svc := NewCatalogService(brokenStore{}, logger.Discard())
	_, err := svc.Recommend(context.Background(), domain.RecommendRequest{RawMode: "featured"})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

type brokenStore struct{ repository.CatalogStore }

func (brokenStore) ListProducts(context.Context, query.Predicate, repository.ListOptions) ([]domain.Product, error) {
	return nil, apperrors.StoreUnavailable(errors.New("timeout"))
}
