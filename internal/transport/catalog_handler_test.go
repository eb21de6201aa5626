package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shtora-api/internal/cms"
	"shtora-api/internal/domain"
	"shtora-api/internal/pricing"
	"shtora-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCatalogService struct {
	products   []domain.Product
	categories []domain.Category
	lastFilter cms.ProductFilter

	page    *service.ProductPage
	pageErr error

	quote     *pricing.Quote
	quoteErr  error
	gotWidth  float64
	gotHeight float64
}

func (m *mockCatalogService) ListProducts(ctx context.Context, filter cms.ProductFilter) []domain.Product {
	m.lastFilter = filter
	return m.products
}

func (m *mockCatalogService) ListCategories(ctx context.Context) []domain.Category {
	return m.categories
}

func (m *mockCatalogService) GetProductPage(ctx context.Context, slug string) (*service.ProductPage, error) {
	return m.page, m.pageErr
}

func (m *mockCatalogService) QuotePrice(ctx context.Context, slug string, widthCm, heightCm float64) (*pricing.Quote, error) {
	m.gotWidth, m.gotHeight = widthCm, heightCm
	return m.quote, m.quoteErr
}

func newCatalogRouter(mock *mockCatalogService) chi.Router {
	r := chi.NewRouter()
	NewCatalogHandler(mock, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestListProducts(t *testing.T) {
	mock := &mockCatalogService{
		products: []domain.Product{{ID: "p1", Name: "Штора Лофт", Slug: "shtora-loft", Price: 2450}},
	}
	router := newCatalogRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products?category=shtori&sort=price_asc&in_stock=true&limit=12", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shtori", mock.lastFilter.Category)
	assert.Equal(t, "price_asc", mock.lastFilter.Sort)
	require.NotNil(t, mock.lastFilter.InStock)
	assert.True(t, *mock.lastFilter.InStock)
	assert.Equal(t, 12, mock.lastFilter.Limit)

	var body struct {
		Products []domain.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "shtora-loft", body.Products[0].Slug)
}

func TestGetProduct(t *testing.T) {
	mock := &mockCatalogService{
		page: &service.ProductPage{
			Product: domain.Product{ID: "p1", Slug: "shtora-loft", Price: 2450},
			Pricing: domain.PricingMode{Kind: domain.PricingFixed, SizeLabel: "Standard"},
		},
	}
	router := newCatalogRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/shtora-loft", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var page service.ProductPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "shtora-loft", page.Product.Slug)
	assert.Equal(t, domain.PricingFixed, page.Pricing.Kind)
}

func TestGetProduct_NotFound(t *testing.T) {
	router := newCatalogRouter(&mockCatalogService{pageErr: service.ErrProductNotFound})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/no-such", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProduct_UpstreamOutageIs503(t *testing.T) {
	router := newCatalogRouter(&mockCatalogService{pageErr: assert.AnError})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/shtora-loft", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"retryable":true`)
}

func TestQuotePrice(t *testing.T) {
	mock := &mockCatalogService{
		quote: &pricing.Quote{Price: 9000, EffectiveWidth: 300, EffectiveHeight: 250, RatePerSqm: 1200},
	}
	router := newCatalogRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/products/tulle/price",
		bytes.NewBufferString(`{"width": 300, "height": 250}`)))

	assert.Equal(t, http.StatusOK, w.Code)

	var quote pricing.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, float64(9000), quote.Price)
}

func TestQuotePrice_NonPositiveDimensionsAreClampedNotRejected(t *testing.T) {
	mock := &mockCatalogService{
		quote: &pricing.Quote{Price: 600, EffectiveWidth: 30, EffectiveHeight: 200, RatePerSqm: 1000},
	}
	router := newCatalogRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/products/tulle/price",
		bytes.NewBufferString(`{"width": -10, "height": 200}`)))

	// The request reaches the quote path unmodified; clamping happens
	// against the product's bounds there.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(-10), mock.gotWidth)
	assert.Equal(t, float64(200), mock.gotHeight)

	var quote pricing.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, float64(30), quote.EffectiveWidth)
}

func TestQuotePrice_MalformedBodyIs400(t *testing.T) {
	router := newCatalogRouter(&mockCatalogService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/products/tulle/price",
		bytes.NewBufferString(`{"width": `)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCategories(t *testing.T) {
	mock := &mockCatalogService{
		categories: []domain.Category{{ID: "c1", Name: "Штори", Slug: "shtori"}},
	}
	router := newCatalogRouter(mock)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shtori")
}
