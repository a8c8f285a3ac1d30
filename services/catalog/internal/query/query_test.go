package query

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func product(id, name string, cents int64) domain.Product {
	return domain.Product{
		ID:         id,
		Name:       name,
		Price:      domain.PriceFromCents(cents),
		IsActive:   true,
		Quantity:   1,
		CategoryID: "cat-1",
		Category:   &domain.CategoryRef{ID: "cat-1", Slug: "prayer-beads", Name: "Prayer Beads"},
	}
}

func TestCompile_NormalizesText(t *testing.T) {
	c := Compile(domain.FilterSpec{Text: "  BeAd  "})
	assert.Equal(t, "bead", c.Predicate.Text)
	assert.True(t, c.Predicate.HasText())

	c = Compile(domain.FilterSpec{Text: "   "})
	assert.False(t, c.Predicate.HasText())
}

func TestCompile_PriceBounds(t *testing.T) {
	c := Compile(domain.FilterSpec{PriceMin: dec("10.001"), PriceMax: dec("20.009")})
	require.NotNil(t, c.Predicate.MinPriceCents)
	require.NotNil(t, c.Predicate.MaxPriceCents)
	assert.Equal(t, int64(1001), *c.Predicate.MinPriceCents)
	assert.Equal(t, int64(2000), *c.Predicate.MaxPriceCents)
	assert.False(t, c.Predicate.Empty)
}

func TestCompile_PriceBoundsSaturate(t *testing.T) {
	p := product("p1", "Amber Tasbih", 3000)

	c := Compile(domain.FilterSpec{PriceMin: dec("100000000000000000")})
	assert.Equal(t, int64(math.MaxInt64), *c.Predicate.MinPriceCents)
	assert.False(t, c.Predicate.Matches(&p))

	c = Compile(domain.FilterSpec{PriceMax: dec("100000000000000000")})
	assert.Equal(t, int64(math.MaxInt64), *c.Predicate.MaxPriceCents)
	assert.True(t, c.Predicate.Matches(&p))

	c = Compile(domain.FilterSpec{PriceMax: &domain.MaxPrice})
	assert.Equal(t, int64(math.MaxInt64), *c.Predicate.MaxPriceCents)
}

func TestCompile_MinAboveMaxIsEmpty(t *testing.T) {
	c := Compile(domain.FilterSpec{PriceMin: dec("50"), PriceMax: dec("10")})
	assert.True(t, c.Predicate.Empty)

	p := product("p1", "Amber Tasbih", 3000)
	assert.False(t, c.Predicate.Matches(&p))

	// Bounds that only collapse after rounding to cents.
	c = Compile(domain.FilterSpec{PriceMin: dec("10.001"), PriceMax: dec("10.009")})
	assert.True(t, c.Predicate.Empty)
}

func TestCompile_RatingFloorDeferred(t *testing.T) {
	floor := 4.0
	c := Compile(domain.FilterSpec{RatingFloor: &floor})
	require.NotNil(t, c.RatingFloor)
	assert.Equal(t, 4.0, *c.RatingFloor)
	assert.Equal(t, Predicate{}, c.Predicate)
}

func TestCompile_Idempotent(t *testing.T) {
	f := domain.FilterSpec{Text: "Cross", Tags: []string{"Wood", "wood"}, PriceMin: dec("1")}
	assert.Equal(t, Compile(f), Compile(f))
}

func TestPredicate_Matches(t *testing.T) {
	p := product("p1", "Premium Amber Tasbih", 4500)
	p.Description = "Hand-polished amber beads"
	p.Tags = []string{"amber", "tasbih", "islamic"}

	minC, maxC := int64(4500), int64(4500)
	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"no constraints", Predicate{}, true},
		{"text in description", Predicate{Text: "bead"}, true},
		{"text in tags", Predicate{Text: "islam"}, true},
		{"text in category name", Predicate{Text: "prayer"}, true},
		{"text absent", Predicate{Text: "cross"}, false},
		{"category slug", Predicate{CategorySlug: "prayer-beads"}, true},
		{"other category slug", Predicate{CategorySlug: "crosses"}, false},
		{"inclusive price bounds", Predicate{MinPriceCents: &minC, MaxPriceCents: &maxC}, true},
		{"any tag", Predicate{Tags: []string{"wood", "amber"}}, true},
		{"no tag", Predicate{Tags: []string{"wood"}}, false},
		{"excluded", Predicate{ExcludeIDs: []string{"p1"}}, false},
		{"ids", Predicate{IDs: []string{"p2"}}, false},
		{"featured only", Predicate{FeaturedOnly: true}, false},
		{"category ids", Predicate{CategoryIDs: []string{"cat-1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Matches(&p))
		})
	}
}

func TestPredicate_ActiveAndStock(t *testing.T) {
	p := product("p1", "Candle", 500)
	p.Quantity = 0
	assert.True(t, Predicate{}.Matches(&p))
	assert.False(t, Predicate{InStockOnly: true}.Matches(&p))

	p.IsActive = false
	assert.False(t, Predicate{}.Matches(&p))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, LikePattern(`50%_off\`))
	assert.Equal(t, "%bead%", LikePattern("bead"))
}

func TestRank(t *testing.T) {
	asc := domain.SortSpec{Key: domain.SortPrice, Order: domain.Asc}
	assert.Equal(t, []Term{{Field: FieldPrice}, {Field: FieldID}}, Rank(asc, false).Terms)

	byName := Rank(domain.SortSpec{Key: domain.SortName, Order: domain.Desc}, false)
	assert.Equal(t, []Term{{Field: FieldName, Desc: true}, {Field: FieldID}}, byName.Terms)

	assert.Equal(t, Newest(), Rank(domain.DefaultSort(), false).Terms)
	assert.Equal(t, Rank(domain.SortSpec{Key: domain.SortCreatedAt, Order: domain.Desc}, false), Rank(domain.DefaultSort(), false))
	assert.Equal(t, FeaturedFirst(), Rank(domain.SortSpec{Key: domain.SortRelevance, Order: domain.Asc}, true).Terms)

	pop := Rank(domain.SortSpec{Key: domain.SortPopularity, Order: domain.Desc}, false)
	assert.True(t, pop.NeedsPostFetch())
	assert.True(t, pop.Desc)
	assert.False(t, byName.NeedsPostFetch())
}

func TestRank_AlwaysEndsWithIDAscending(t *testing.T) {
	for _, k := range domain.SortKeys {
		for _, o := range []domain.SortOrder{domain.Asc, domain.Desc} {
			for _, text := range []bool{true, false} {
				terms := Rank(domain.SortSpec{Key: k, Order: o}, text).Terms
				require.NotEmpty(t, terms)
				assert.Equal(t, Term{Field: FieldID}, terms[len(terms)-1], "%s %s", k, o)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	now := time.Now()
	a := product("a", "b-name", 100)
	b := product("b", "A-name", 100)
	a.CreatedAt, b.CreatedAt = now, now
	b.IsFeatured = true

	assert.Negative(t, Compare([]Term{{Field: FieldPrice}, {Field: FieldID}}, &a, &b))
	assert.Positive(t, Compare([]Term{{Field: FieldName}}, &a, &b))
	assert.Positive(t, Compare(FeaturedFirst(), &a, &b))
	assert.Zero(t, Compare([]Term{{Field: FieldCreatedAt}}, &a, &b))
}

func TestSortPostFetch(t *testing.T) {
	items := []domain.Product{product("c", "C", 1), product("a", "A", 1), product("b", "B", 1)}
	items[0].AverageRating = 4.5
	items[1].AverageRating = 3
	items[2].AverageRating = 4.5

	SortPostFetch(items, Ranking{PostFetch: domain.SortRating, Desc: true}, nil)
	assert.Equal(t, []string{"b", "c", "a"}, ids(items))

	SortPostFetch(items, Ranking{PostFetch: domain.SortPopularity}, map[string]int{"a": 2, "b": 0, "c": 2})
	assert.Equal(t, []string{"b", "a", "c"}, ids(items))
}

func TestApplyRatingFloor(t *testing.T) {
	items := []domain.Product{product("a", "A", 1), product("b", "B", 1)}
	items[0].AverageRating = 3.9
	items[1].AverageRating = 4

	floor := 4.0
	assert.Equal(t, []string{"b"}, ids(ApplyRatingFloor(items, &floor)))
	assert.Len(t, ApplyRatingFloor(items, nil), 2)
}

func ids(items []domain.Product) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}
