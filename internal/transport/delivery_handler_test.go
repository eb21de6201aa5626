package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shtora-api/internal/delivery"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockCarrier struct {
	cities     []delivery.City
	warehouses []delivery.Warehouse
	err        error

	gotQuery   string
	gotCityRef string
}

func (m *mockCarrier) SearchCities(ctx context.Context, query string, limit int) ([]delivery.City, error) {
	m.gotQuery = query
	return m.cities, m.err
}

func (m *mockCarrier) Warehouses(ctx context.Context, cityRef string) ([]delivery.Warehouse, error) {
	m.gotCityRef = cityRef
	return m.warehouses, m.err
}

func newDeliveryRouter(mock *mockCarrier) chi.Router {
	r := chi.NewRouter()
	NewDeliveryHandler(mock, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestSearchCities_Handler(t *testing.T) {
	mock := &mockCarrier{
		cities: []delivery.City{{Ref: "city-1", Name: "Київ", Area: "Київська"}},
	}
	router := newDeliveryRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/delivery/cities?q=%D0%9A%D0%B8", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ки", mock.gotQuery)
	assert.Contains(t, w.Body.String(), "city-1")
}

func TestWarehouses_Handler(t *testing.T) {
	mock := &mockCarrier{
		warehouses: []delivery.Warehouse{{Ref: "wh-1", Number: "1", Description: "Відділення №1"}},
	}
	router := newDeliveryRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/delivery/warehouses?city_ref=city-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "city-1", mock.gotCityRef)
	assert.Contains(t, w.Body.String(), "wh-1")
}

func TestWarehouses_Handler_CarrierErrorIs503(t *testing.T) {
	router := newDeliveryRouter(&mockCarrier{err: assert.AnError})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/delivery/warehouses?city_ref=city-1", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
