// Package query compiles validated search requests into store predicates and
// orderings. Everything here is pure; the stores interpret the results.
package query

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

// Predicate selects active products. Zero fields are unconstrained.
type Predicate struct {
	// Text is lowercased and matched as a substring of name, description,
	// tags or category name.
	Text         string
	CategorySlug string
	CategoryIDs  []string
	IDs          []string
	ExcludeIDs   []string
	// Price bounds in minor units, inclusive.
	MinPriceCents *int64
	MaxPriceCents *int64
	InStockOnly   bool
	// Tags match any-of, as lowercase substrings of the tags column.
	Tags         []string
	FeaturedOnly bool
	// Empty marks a predicate no product can satisfy.
	Empty bool
}

// Compiled is a predicate plus the rating floor, which can only be applied
// after ratings are aggregated.
type Compiled struct {
	Predicate   Predicate
	RatingFloor *float64
}

// Compile turns a FilterSpec into a store predicate.
func Compile(f domain.FilterSpec) Compiled {
	pred := Predicate{
		Text:         strings.ToLower(strings.TrimSpace(f.Text)),
		CategorySlug: strings.TrimSpace(f.CategorySlug),
		InStockOnly:  f.InStockOnly,
		Tags:         domain.NormalizeTags(f.Tags),
	}
	if len(pred.Tags) == 0 {
		pred.Tags = nil
	}

	if f.PriceMin != nil {
		c := boundCents(*f.PriceMin, decimal.Decimal.Ceil)
		pred.MinPriceCents = &c
	}
	if f.PriceMax != nil {
		c := boundCents(*f.PriceMax, decimal.Decimal.Floor)
		pred.MaxPriceCents = &c
	}
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		pred.Empty = true
	}
	if pred.MinPriceCents != nil && pred.MaxPriceCents != nil && *pred.MinPriceCents > *pred.MaxPriceCents {
		pred.Empty = true
	}

	return Compiled{Predicate: pred, RatingFloor: f.RatingFloor}
}

// boundCents rounds a price bound to minor units, saturating at MaxInt64.
func boundCents(price decimal.Decimal, round func(decimal.Decimal) decimal.Decimal) int64 {
	if price.GreaterThan(domain.MaxPrice) {
		return math.MaxInt64
	}
	return round(price.Shift(2)).IntPart()
}

// HasText reports whether a text constraint is present.
func (p Predicate) HasText() bool {
	return p.Text != ""
}

// Matches reports whether a product satisfies p. It is the reference
// semantics the SQL store reproduces.
func (p Predicate) Matches(prod *domain.Product) bool {
	if p.Empty || !prod.IsActive {
		return false
	}
	tags := strings.ToLower(domain.JoinTags(prod.Tags))
	if p.Text != "" {
		categoryName := ""
		if prod.Category != nil {
			categoryName = prod.Category.Name
		}
		if !containsFold(prod.Name, p.Text) &&
			!containsFold(prod.Description, p.Text) &&
			!strings.Contains(tags, p.Text) &&
			!containsFold(categoryName, p.Text) {
			return false
		}
	}
	if p.CategorySlug != "" && (prod.Category == nil || prod.Category.Slug != p.CategorySlug) {
		return false
	}
	if len(p.CategoryIDs) > 0 && !contains(p.CategoryIDs, prod.CategoryID) {
		return false
	}
	if len(p.IDs) > 0 && !contains(p.IDs, prod.ID) {
		return false
	}
	if contains(p.ExcludeIDs, prod.ID) {
		return false
	}
	cents := prod.PriceCents()
	if p.MinPriceCents != nil && cents < *p.MinPriceCents {
		return false
	}
	if p.MaxPriceCents != nil && cents > *p.MaxPriceCents {
		return false
	}
	if p.InStockOnly && !prod.InStock() {
		return false
	}
	if len(p.Tags) > 0 {
		found := false
		for _, t := range p.Tags {
			if strings.Contains(tags, t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.FeaturedOnly && !prod.IsFeatured {
		return false
	}
	return true
}

// LikePattern wraps s in % wildcards, escaping any LIKE metacharacters so
// user text matches literally.
func LikePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsFold(s, lowered string) bool {
	return strings.Contains(strings.ToLower(s), lowered)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
