package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

// Field is a product attribute a store can order by.
type Field string

const (
	FieldPrice     Field = "price"
	FieldName      Field = "name"
	FieldCreatedAt Field = "createdAt"
	FieldFeatured  Field = "featured"
	FieldID        Field = "id"
)

// Term is one ORDER BY element.
type Term struct {
	Field Field
	Desc  bool
}

// Ranking is the resolved order for a listing. Terms always end with id
// ascending. When PostFetch is set the store order is irrelevant and the
// caller sorts the full match set with SortPostFetch.
type Ranking struct {
	Terms     []Term
	PostFetch domain.SortKey
	Desc      bool
}

var idAsc = Term{Field: FieldID}

// FeaturedFirst orders featured products first, then newest.
func FeaturedFirst() []Term {
	return []Term{{Field: FieldFeatured, Desc: true}, {Field: FieldCreatedAt, Desc: true}, idAsc}
}

// Newest orders by creation time, newest first.
func Newest() []Term {
	return []Term{{Field: FieldCreatedAt, Desc: true}, idAsc}
}

// Rank resolves a sort request. Relevance ignores the requested direction.
func Rank(s domain.SortSpec, hasText bool) Ranking {
	desc := s.Order == domain.Desc
	switch s.Key {
	case domain.SortPrice:
		return Ranking{Terms: []Term{{Field: FieldPrice, Desc: desc}, idAsc}}
	case domain.SortName:
		return Ranking{Terms: []Term{{Field: FieldName, Desc: desc}, idAsc}}
	case domain.SortCreatedAt:
		return Ranking{Terms: []Term{{Field: FieldCreatedAt, Desc: desc}, idAsc}}
	case domain.SortPopularity, domain.SortRating:
		return Ranking{Terms: []Term{idAsc}, PostFetch: s.Key, Desc: desc}
	default:
		if hasText {
			return Ranking{Terms: FeaturedFirst()}
		}
		return Ranking{Terms: Newest()}
	}
}

// NeedsPostFetch reports whether ordering depends on aggregated values.
func (r Ranking) NeedsPostFetch() bool {
	return r.PostFetch != ""
}

// Compare orders two products by terms.
func Compare(terms []Term, a, b *domain.Product) int {
	for _, t := range terms {
		var c int
		switch t.Field {
		case FieldPrice:
			c = a.Price.Cmp(b.Price.Decimal)
		case FieldName:
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case FieldCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case FieldFeatured:
			c = cmp.Compare(boolRank(a.IsFeatured), boolRank(b.IsFeatured))
		case FieldID:
			c = cmp.Compare(a.ID, b.ID)
		}
		if t.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// SortPostFetch orders items by rating or popularity, breaking ties by id.
// Items must already carry their stats; popularity may be nil for rating.
func SortPostFetch(items []domain.Product, r Ranking, popularity map[string]int) {
	slices.SortStableFunc(items, func(a, b domain.Product) int {
		var c int
		switch r.PostFetch {
		case domain.SortRating:
			c = cmp.Compare(a.AverageRating, b.AverageRating)
		case domain.SortPopularity:
			c = cmp.Compare(popularity[a.ID], popularity[b.ID])
		}
		if r.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// ApplyRatingFloor keeps items whose average rating is at least floor.
func ApplyRatingFloor(items []domain.Product, floor *float64) []domain.Product {
	if floor == nil {
		return items
	}
	kept := make([]domain.Product, 0, len(items))
	for _, p := range items {
		if p.AverageRating >= *floor {
			kept = append(kept, p)
		}
	}
	return kept
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
