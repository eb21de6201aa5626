// Package cms is the read-only client for the headless content store
// that owns products and categories. It speaks the store's REST contract
// and maps its snake_case records onto the domain types.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"shtora-api/internal/domain"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

const (
	defaultPageSize       = 20
	relatedProductsLimit  = 4
	variantCandidateLimit = 10
	requestTimeout        = 10 * time.Second
)

// Client is a content store API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a content store client. The token is optional; when
// set it is sent as a bearer token on every request.
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// ProductFilter narrows and orders a product listing.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	InStock  *bool
	IsNew    bool
	IsHit    bool
	Search   string
	Sort     string // price_asc, price_desc, newest, popular, rating
	Page     int
	Limit    int
}

// AssetURL resolves an opaque image id to a public URL. Empty ids
// resolve to an empty string.
func (c *Client) AssetURL(imageID string) string {
	if imageID == "" {
		return ""
	}
	return fmt.Sprintf("%s/assets/%s", c.baseURL, imageID)
}

// ListProducts returns published products matching the filter. Pages are
// 1-based; a zero limit falls back to the default page size.
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("filter[status][_eq]", "published")

	if filter.Category != "" {
		q.Set("filter[category][slug][_eq]", filter.Category)
	}
	if filter.MinPrice != nil {
		q.Set("filter[price][_gte]", strconv.FormatFloat(*filter.MinPrice, 'f', -1, 64))
	}
	if filter.MaxPrice != nil {
		q.Set("filter[price][_lte]", strconv.FormatFloat(*filter.MaxPrice, 'f', -1, 64))
	}
	if filter.InStock != nil {
		q.Set("filter[in_stock][_eq]", strconv.FormatBool(*filter.InStock))
	}
	if filter.IsNew {
		q.Set("filter[is_new][_eq]", "true")
	}
	if filter.IsHit {
		q.Set("filter[is_hit][_eq]", "true")
	}
	if filter.Search != "" {
		q.Set("filter[name][_contains]", filter.Search)
	}

	q.Set("sort", sortField(filter.Sort))

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	q.Set("limit", strconv.Itoa(limit))
	if filter.Page > 1 {
		q.Set("offset", strconv.Itoa((filter.Page-1)*limit))
	}

	return c.fetchProducts(ctx, q)
}

// GetProductBySlug returns a single product. Published products win; an
// unpublished product with the slug is returned as a fallback so direct
// links to drafts keep working. A missing slug yields ErrProductNotFound,
// while transport failures surface as errors so callers can distinguish
// "truly not found" from "upstream error".
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	q := url.Values{}
	q.Set("filter[slug][_eq]", slug)
	q.Set("filter[status][_eq]", "published")
	q.Set("limit", "1")

	products, err := c.fetchProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return &products[0], nil
	}

	q.Del("filter[status][_eq]")
	products, err = c.fetchProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return &products[0], nil
}

// RelatedProducts lists a few other published products from the same
// category, excluding the product itself.
func (c *Client) RelatedProducts(ctx context.Context, categorySlug, excludeID string) ([]domain.Product, error) {
	q := url.Values{}
	q.Set("filter[status][_eq]", "published")
	q.Set("filter[category][slug][_eq]", categorySlug)
	q.Set("filter[id][_neq]", excludeID)
	q.Set("limit", strconv.Itoa(relatedProductsLimit))

	return c.fetchProducts(ctx, q)
}

// SizeVariantCandidates lists same-category siblings of a product for
// the variant resolver. Family matching is the resolver's job; this only
// restricts candidates to the category.
func (c *Client) SizeVariantCandidates(ctx context.Context, product domain.Product) ([]domain.Product, error) {
	if product.CategorySlug == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("filter[status][_eq]", "published")
	q.Set("filter[category][slug][_eq]", product.CategorySlug)
	q.Set("filter[id][_neq]", product.ID)
	q.Set("limit", strconv.Itoa(variantCandidateLimit))

	return c.fetchProducts(ctx, q)
}

// ListCategories returns all categories ordered by name.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	q := url.Values{}
	q.Set("sort", "name")

	var envelope struct {
		Data []wireCategory `json:"data"`
	}
	if err := c.get(ctx, "/items/categories", q, &envelope); err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		categories = append(categories, c.toCategory(item))
	}
	return categories, nil
}

// GetCategory returns one category by slug.
func (c *Client) GetCategory(ctx context.Context, slug string) (*domain.Category, error) {
	q := url.Values{}
	q.Set("filter[slug][_eq]", slug)
	q.Set("limit", "1")

	var envelope struct {
		Data []wireCategory `json:"data"`
	}
	if err := c.get(ctx, "/items/categories", q, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		return nil, ErrCategoryNotFound
	}
	category := c.toCategory(envelope.Data[0])
	return &category, nil
}

func (c *Client) fetchProducts(ctx context.Context, q url.Values) ([]domain.Product, error) {
	q.Set("fields", "*,category.id,category.slug,category.name")

	var envelope struct {
		Data []wireProduct `json:"data"`
	}
	if err := c.get(ctx, "/items/products", q, &envelope); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		products = append(products, c.toProduct(item))
	}
	return products, nil
}

// get performs a GET with bearer auth and bounded exponential-backoff
// retries. Server-side and transport failures retry; client errors do not.
func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("Content store request failed", zap.String("path", path), zap.Error(err))
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, resp.Body)
			err := fmt.Errorf("content store returned status %d", resp.StatusCode)
			c.logger.Warn("Content store request failed", zap.String("path", path), zap.Error(err))
			return retry.RetryableError(err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("content store returned status %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode content store response: %w", err)
		}
		return nil
	})
}

func sortField(sort string) string {
	switch sort {
	case "price_asc":
		return "price"
	case "price_desc":
		return "-price"
	case "popular":
		return "-reviews_count"
	case "rating":
		return "-rating"
	case "newest", "":
		return "-date_created"
	default:
		return "-date_created"
	}
}
