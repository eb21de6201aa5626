package transport

import (
	"net/http"
	"strconv"

	"shtora-api/internal/cms"
	"shtora-api/internal/middleware"
	"shtora-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuoteRequest asks for the price of a custom size, in centimeters.
// Dimensions are not validated here: missing, zero or negative values
// are clamped to the product's bounds downstream.
type QuoteRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CatalogHandler handles HTTP requests for products and categories.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers all catalog routes.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/products", h.ListProducts)
	r.Get("/api/products/{slug}", h.GetProduct)
	r.Post("/api/products/{slug}/price", h.QuotePrice)
	r.Get("/api/categories", h.ListCategories)
}

// ListProducts returns the filtered product list. Upstream failures
// degrade to an empty list inside the service.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := productFilterFromQuery(r)
	products := h.catalog.ListProducts(r.Context(), filter)
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
	})
}

// GetProduct returns the product detail page payload.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.catalog.GetProductPage(r.Context(), slug)
	if err != nil {
		if service.IsNotFound(err) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Product page fetch failed", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "catalog temporarily unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// QuotePrice computes the price for a requested custom size. Out-of-range
// dimensions are clamped, not rejected.
func (h *CatalogHandler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req QuoteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.catalog.QuotePrice(r.Context(), slug, req.Width, req.Height)
	if err != nil {
		if service.IsNotFound(err) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Price quote failed", zap.String("slug", slug), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "catalog temporarily unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, quote)
}

// ListCategories returns all categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.ListCategories(r.Context())
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

func productFilterFromQuery(r *http.Request) cms.ProductFilter {
	q := r.URL.Query()

	filter := cms.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
		IsNew:    q.Get("new") == "true",
		IsHit:    q.Get("hit") == "true",
	}

	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		filter.MaxPrice = &v
	}
	if q.Has("in_stock") {
		inStock := q.Get("in_stock") == "true"
		filter.InStock = &inStock
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		filter.Limit = v
	}

	return filter
}
