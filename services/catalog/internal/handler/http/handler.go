package http

import (
	"log/slog"

	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/pkg/pagination"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/domain"
	"github.com/DevyRuxpin/sacred-treasures-ecommerce-sub000/services/catalog/internal/service"
)

// CatalogHandler handles HTTP requests for search and recommendations.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Response DTOs ---

// searchResponse is the success envelope for GET /api/search.
type searchResponse struct {
	Success     bool             `json:"success"`
	Data        []domain.Product `json:"data"`
	Pagination  pagination.Meta  `json:"pagination"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Filters     domain.Facets    `json:"filters"`
}

// recommendationResponse is the success envelope for GET /api/recommendations.
type recommendationResponse struct {
	Success bool             `json:"success"`
	Data    []domain.Product `json:"data"`
	Type    domain.Mode      `json:"type"`
}

// nonNil keeps empty result sets encoding as [] rather than null.
func nonNil(items []domain.Product) []domain.Product {
	if items == nil {
		return []domain.Product{}
	}
	return items
}
