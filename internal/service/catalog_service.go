package service

import (
	"context"
	"errors"

	"shtora-api/internal/cms"
	"shtora-api/internal/domain"
	"shtora-api/internal/pricing"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrProductNotFound re-exports the content store miss so transport does
// not depend on the cms package directly.
var ErrProductNotFound = cms.ErrProductNotFound

// ContentStore is the read-only contract this service needs from the
// headless content store.
type ContentStore interface {
	ListProducts(ctx context.Context, filter cms.ProductFilter) ([]domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	RelatedProducts(ctx context.Context, categorySlug, excludeID string) ([]domain.Product, error)
	SizeVariantCandidates(ctx context.Context, product domain.Product) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// ProductPage is everything a product detail view needs: the product,
// its resolved pricing mode, and related products.
type ProductPage struct {
	Product domain.Product     `json:"product"`
	Pricing domain.PricingMode `json:"pricing"`
	Related []domain.Product   `json:"related"`
}

// CatalogService serves catalog reads with the degradation policy of a
// storefront: list paths never fail the page, the single-product path
// distinguishes a real miss from an upstream outage.
type CatalogService interface {
	ListProducts(ctx context.Context, filter cms.ProductFilter) []domain.Product
	ListCategories(ctx context.Context) []domain.Category
	GetProductPage(ctx context.Context, slug string) (*ProductPage, error)
	QuotePrice(ctx context.Context, slug string, widthCm, heightCm float64) (*pricing.Quote, error)
}

type catalogService struct {
	store  ContentStore
	logger *zap.Logger
}

// NewCatalogService creates a CatalogService over a content store.
func NewCatalogService(store ContentStore, logger *zap.Logger) CatalogService {
	return &catalogService{store: store, logger: logger}
}

// ListProducts degrades to an empty list on upstream failure so the
// catalog page still renders.
func (s *catalogService) ListProducts(ctx context.Context, filter cms.ProductFilter) []domain.Product {
	products, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		s.logger.Warn("Product listing degraded to empty", zap.Error(err))
		return []domain.Product{}
	}
	return products
}

// ListCategories degrades to an empty list on upstream failure.
func (s *catalogService) ListCategories(ctx context.Context) []domain.Category {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.logger.Warn("Category listing degraded to empty", zap.Error(err))
		return []domain.Category{}
	}
	return categories
}

// GetProductPage loads the product, then fetches related products and
// size variant candidates in parallel. Either side fetch failing
// degrades to empty without blocking the other; only the product fetch
// itself can fail the page.
func (s *catalogService) GetProductPage(ctx context.Context, slug string) (*ProductPage, error) {
	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var related, candidates []domain.Product

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if product.CategorySlug == "" {
			return nil
		}
		items, err := s.store.RelatedProducts(gctx, product.CategorySlug, product.ID)
		if err != nil {
			s.logger.Warn("Related products degraded to empty",
				zap.String("slug", slug), zap.Error(err))
			return nil
		}
		related = items
		return nil
	})
	g.Go(func() error {
		items, err := s.store.SizeVariantCandidates(gctx, *product)
		if err != nil {
			s.logger.Warn("Size variant candidates degraded to empty",
				zap.String("slug", slug), zap.Error(err))
			return nil
		}
		candidates = items
		return nil
	})
	// The goroutines swallow their own errors, so Wait only joins.
	g.Wait()

	if related == nil {
		related = []domain.Product{}
	}

	return &ProductPage{
		Product: *product,
		Pricing: pricing.Resolve(*product, candidates),
		Related: related,
	}, nil
}

// QuotePrice computes the price for a requested custom size of a
// continuously priced product. Requested dimensions are clamped, never
// rejected; the effective size is echoed back in the quote.
func (s *catalogService) QuotePrice(ctx context.Context, slug string, widthCm, heightCm float64) (*pricing.Quote, error) {
	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	quote := pricing.QuoteFor(*product, widthCm, heightCm)
	return &quote, nil
}

// IsNotFound reports whether an error is the catalog miss, as opposed to
// an upstream failure that deserves a retry-capable error state.
func IsNotFound(err error) bool {
	return errors.Is(err, cms.ErrProductNotFound) || errors.Is(err, cms.ErrCategoryNotFound)
}
