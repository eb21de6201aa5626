package transport

import (
	"context"
	"net/http"
	"strconv"

	"shtora-api/internal/delivery"
	"shtora-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CarrierClient is the delivery-partner lookup surface used at checkout.
type CarrierClient interface {
	SearchCities(ctx context.Context, query string, limit int) ([]delivery.City, error)
	Warehouses(ctx context.Context, cityRef string) ([]delivery.Warehouse, error)
}

// DeliveryHandler handles city and warehouse lookups.
type DeliveryHandler struct {
	carrier CarrierClient
	logger  *zap.Logger
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(carrier CarrierClient, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{carrier: carrier, logger: logger}
}

// RegisterRoutes registers delivery lookup routes.
func (h *DeliveryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/delivery/cities", h.SearchCities)
	r.Get("/api/delivery/warehouses", h.Warehouses)
}

// SearchCities returns settlements matching the q parameter.
func (h *DeliveryHandler) SearchCities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 50 {
		limit = v
	}

	cities, err := h.carrier.SearchCities(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("City search failed", zap.String("query", query), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "delivery lookup unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
	})
}

// Warehouses returns pickup points for the city_ref parameter.
func (h *DeliveryHandler) Warehouses(w http.ResponseWriter, r *http.Request) {
	cityRef := r.URL.Query().Get("city_ref")

	warehouses, err := h.carrier.Warehouses(r.Context(), cityRef)
	if err != nil {
		h.logger.Error("Warehouse lookup failed", zap.String("city_ref", cityRef), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "delivery lookup unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"warehouses": warehouses,
	})
}
