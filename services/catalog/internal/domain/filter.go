package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// MaxPrice is the largest amount that fits in int64 minor units.
var MaxPrice = decimal.New(math.MaxInt64, -2)

// FilterSpec is a validated search request's constraints. Zero values mean
// "no constraint".
type FilterSpec struct {
	Text         string
	CategorySlug string
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	RatingFloor  *float64
	InStockOnly  bool
	Tags         []string
}

// SortKey names a listing order.
type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortPrice      SortKey = "price"
	SortName       SortKey = "name"
	SortCreatedAt  SortKey = "createdAt"
	SortPopularity SortKey = "popularity"
	SortRating     SortKey = "rating"
)

// SortKeys lists every accepted key.
var SortKeys = []SortKey{SortRelevance, SortPrice, SortName, SortCreatedAt, SortPopularity, SortRating}

// ParseSortKey reports whether s is a known sort key.
func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// SortOrder is a sort direction.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// SortSpec selects the listing order.
type SortSpec struct {
	Key   SortKey
	Order SortOrder
}

// DefaultSort is relevance, descending.
func DefaultSort() SortSpec {
	return SortSpec{Key: SortRelevance, Order: Desc}
}
