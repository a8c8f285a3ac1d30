// Package pagination implements offset/limit windowing and page metadata.
package pagination

import (
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
)

const (
	// DefaultListingLimit is the page size for search listings.
	DefaultListingLimit = 12
	// MaxListingLimit is the largest accepted listing page size.
	MaxListingLimit = 100
	// DefaultPanelLimit is the size of a recommendation panel.
	DefaultPanelLimit = 8
	// MaxPanelLimit is the largest accepted recommendation panel.
	MaxPanelLimit = 50
)

// Params holds a validated page request.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// New validates page and limit. Both must be at least 1, limit must not
// exceed maxLimit (maxLimit <= 0 means unbounded) and the page's offset must
// fit in an int.
func New(page, limit, maxLimit int) (Params, error) {
	if page < 1 {
		return Params{}, apperrors.InvalidPagination("page must be at least 1, got %d", page)
	}
	if limit < 1 {
		return Params{}, apperrors.InvalidPagination("limit must be at least 1, got %d", limit)
	}
	if maxLimit > 0 && limit > maxLimit {
		return Params{}, apperrors.InvalidPagination("limit must be at most %d, got %d", maxLimit, limit)
	}
	if page-1 > math.MaxInt/limit {
		return Params{}, apperrors.InvalidPagination("page %d is out of range", page)
	}
	return Params{Page: page, Limit: limit}, nil
}

// Offset returns the number of items preceding the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// FromRequest reads "page" and "limit" query parameters. Missing values take
// the defaults; present values that are not integers are rejected.
func FromRequest(r *http.Request, defaultLimit, maxLimit int) (Params, error) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), "page", 1)
	if err != nil {
		return Params{}, err
	}
	limit, err := intParam(q.Get("limit"), "limit", defaultLimit)
	if err != nil {
		return Params{}, err
	}
	return New(page, limit, maxLimit)
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidPagination("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewMeta computes page metadata for total matching items.
func NewMeta(p Params, total int) Meta {
	totalPages := total / p.Limit
	if total%p.Limit > 0 {
		totalPages++
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}

// Window returns the slice of items on page p. A page past the end yields an
// empty, non-nil slice.
func Window[T any](items []T, p Params) []T {
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end < start || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
