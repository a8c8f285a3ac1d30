package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/httputil"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/pagination"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/validator"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/service"
)

// --- Request DTOs ---

// searchRequest is the raw query string of GET /api/search. Numeric fields
// stay strings until parsed so bad input is reported instead of zeroed.
type searchRequest struct {
	Text      string   `query:"q" validate:"max=200"`
	Category  string   `query:"category" validate:"max=100"`
	PriceMin  string   `query:"priceMin"`
	PriceMax  string   `query:"priceMax"`
	Rating    *float64 `query:"rating" validate:"omitempty,gte=0,lte=5"`
	InStock   string   `query:"inStock"`
	Tags      []string `query:"tags" validate:"max=20,dive,max=50"`
	SortBy    string   `query:"sortBy" validate:"omitempty,oneof=relevance price name createdAt popularity rating"`
	SortOrder string   `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// parseSearchRequest turns the query string into a validated SearchInput.
func parseSearchRequest(r *http.Request) (service.SearchInput, error) {
	q := r.URL.Query()

	req := searchRequest{
		Text:      q.Get("q"),
		Category:  strings.TrimSpace(q.Get("category")),
		PriceMin:  strings.TrimSpace(q.Get("priceMin")),
		PriceMax:  strings.TrimSpace(q.Get("priceMax")),
		InStock:   strings.TrimSpace(q.Get("inStock")),
		Tags:      splitList(q, "tags"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if raw := strings.TrimSpace(q.Get("rating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return service.SearchInput{}, apperrors.InvalidFilter("rating must be a number, got %q", raw)
		}
		req.Rating = &rating
	}
	if err := validator.Validate(req); err != nil {
		return service.SearchInput{}, err
	}

	filter := domain.FilterSpec{
		Text:         req.Text,
		CategorySlug: req.Category,
		RatingFloor:  req.Rating,
		Tags:         req.Tags,
	}

	var err error
	if filter.PriceMin, err = parsePrice("priceMin", req.PriceMin); err != nil {
		return service.SearchInput{}, err
	}
	if filter.PriceMax, err = parsePrice("priceMax", req.PriceMax); err != nil {
		return service.SearchInput{}, err
	}
	if req.InStock != "" {
		inStock, err := strconv.ParseBool(req.InStock)
		if err != nil {
			return service.SearchInput{}, apperrors.InvalidFilter("inStock must be a boolean, got %q", req.InStock)
		}
		filter.InStockOnly = inStock
	}

	sort := domain.DefaultSort()
	if req.SortBy != "" {
		sort.Key, _ = domain.ParseSortKey(req.SortBy)
	}
	if req.SortOrder != "" {
		sort.Order = domain.SortOrder(req.SortOrder)
	}

	page, err := pagination.FromRequest(r, pagination.DefaultListingLimit, pagination.MaxListingLimit)
	if err != nil {
		return service.SearchInput{}, err
	}

	return service.SearchInput{Filter: filter, Sort: sort, Page: page}, nil
}

// Price bounds outside this exponent range are rejected before any
// arithmetic, which would otherwise scale with the exponent.
const (
	minPriceExponent = -8
	maxPriceExponent = 18
)

// parsePrice reads an optional non-negative decimal price.
func parsePrice(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.InvalidFilter("%s must be a number, got %q", name, raw)
	}
	if exp := price.Exponent(); exp < minPriceExponent || exp > maxPriceExponent {
		return nil, apperrors.InvalidFilter("%s is out of range, got %q", name, raw)
	}
	if price.IsNegative() {
		return nil, apperrors.InvalidFilter("%s must not be negative, got %s", name, raw)
	}
	if price.GreaterThan(domain.MaxPrice) {
		return nil, apperrors.InvalidFilter("%s must be at most %s, got %s", name, domain.MaxPrice, raw)
	}
	return &price, nil
}

// splitList accepts both tags=a,b and repeated tags=a&tags=b.
func splitList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// --- Handlers ---

// Search handles GET /api/search
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	input, err := parseSearchRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.Search(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, searchResponse{
		Success:     true,
		Data:        nonNil(result.Products),
		Pagination:  result.Pagination,
		Suggestions: result.Suggestions,
		Filters:     result.Facets,
	})
}
