package http

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/errors"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/httputil"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/middleware"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/pagination"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/validator"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
)

// recommendationRequest is the query string of GET /api/recommendations. The
// type is not constrained here: unknown modes fall back to featured.
type recommendationRequest struct {
	Type       string `query:"type" validate:"max=64"`
	ProductID  string `query:"productId" validate:"max=64"`
	UserID     string `query:"userId" validate:"max=64"`
	CategoryID string `query:"categoryId" validate:"max=100"`
}

// parseRecommendationRequest reads the panel request. A missing userId falls
// back to the gateway's user header.
func parseRecommendationRequest(r *http.Request) (domain.RecommendRequest, error) {
	q := r.URL.Query()

	req := recommendationRequest{
		Type:       strings.TrimSpace(q.Get("type")),
		ProductID:  strings.TrimSpace(q.Get("productId")),
		UserID:     strings.TrimSpace(q.Get("userId")),
		CategoryID: strings.TrimSpace(q.Get("categoryId")),
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get(middleware.UserHeader)
	}
	if err := validator.Validate(req); err != nil {
		return domain.RecommendRequest{}, err
	}

	limit := pagination.DefaultPanelLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.RecommendRequest{}, apperrors.InvalidPagination("limit must be an integer, got %q", raw)
		}
		p, err := pagination.New(1, n, pagination.MaxPanelLimit)
		if err != nil {
			return domain.RecommendRequest{}, err
		}
		limit = p.Limit
	}

	return domain.RecommendRequest{
		RawMode:    req.Type,
		ProductID:  req.ProductID,
		UserID:     req.UserID,
		CategoryID: req.CategoryID,
		Limit:      limit,
	}, nil
}

// Recommendations handles GET /api/recommendations
func (h *CatalogHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	req, err := parseRecommendationRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rec, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, recommendationResponse{
		Success: true,
		Data:    nonNil(rec.Products),
		Type:    rec.Mode,
	})
}
