// Package delivery talks to the Nova Poshta API for city and warehouse
// lookups used on the checkout page.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.novaposhta.ua/v2.0/json/"

// City is a settlement as returned by the address model.
type City struct {
	Ref            string `json:"ref"`
	Name           string `json:"name"`
	Area           string `json:"area"`
	SettlementType string `json:"settlementType"`
}

// Warehouse is a pickup point within a city.
type Warehouse struct {
	Ref         string `json:"ref"`
	Number      string `json:"number"`
	Description string `json:"description"`
	CityRef     string `json:"cityRef"`
}

// Client is a Nova Poshta JSON API client. All lookups degrade to an
// empty result set on upstream failure so checkout never blocks on the
// carrier being down.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Client)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func NewClient(apiKey string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Nova Poshta wraps every call in the same envelope: a model name, a
// called method and a free-form properties bag.
type apiRequest struct {
	APIKey           string `json:"apiKey"`
	ModelName        string `json:"modelName"`
	CalledMethod     string `json:"calledMethod"`
	MethodProperties any    `json:"methodProperties"`
}

type apiResponse struct {
	Success bool              `json:"success"`
	Data    []json.RawMessage `json:"data"`
	Errors  []string          `json:"errors"`
}

type wireCity struct {
	Ref                       string `json:"Ref"`
	Description               string `json:"Description"`
	AreaDescription           string `json:"AreaDescription"`
	SettlementTypeDescription string `json:"SettlementTypeDescription"`
}

type wireWarehouse struct {
	Ref         string `json:"Ref"`
	Number      string `json:"Number"`
	Description string `json:"Description"`
	CityRef     string `json:"CityRef"`
}

// SearchCities looks up settlements matching the query. Queries shorter
// than two characters return an empty slice without hitting the API.
func (c *Client) SearchCities(ctx context.Context, query string, limit int) ([]City, error) {
	if len([]rune(query)) < 2 {
		return []City{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	raw, err := c.call(ctx, apiRequest{
		ModelName:    "Address",
		CalledMethod: "getCities",
		MethodProperties: map[string]any{
			"FindByString": query,
			"Limit":        limit,
		},
	})
	if err != nil {
		c.logger.Warn("Nova Poshta city search failed",
			zap.String("query", query), zap.Error(err))
		return []City{}, nil
	}

	cities := make([]City, 0, len(raw))
	for _, item := range raw {
		var w wireCity
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		cities = append(cities, City{
			Ref:            w.Ref,
			Name:           w.Description,
			Area:           w.AreaDescription,
			SettlementType: w.SettlementTypeDescription,
		})
	}
	return cities, nil
}

// Warehouses lists pickup points in the city identified by cityRef.
func (c *Client) Warehouses(ctx context.Context, cityRef string) ([]Warehouse, error) {
	if cityRef == "" {
		return []Warehouse{}, nil
	}

	raw, err := c.call(ctx, apiRequest{
		ModelName:    "Address",
		CalledMethod: "getWarehouses",
		MethodProperties: map[string]any{
			"CityRef": cityRef,
		},
	})
	if err != nil {
		c.logger.Warn("Nova Poshta warehouse lookup failed",
			zap.String("city_ref", cityRef), zap.Error(err))
		return []Warehouse{}, nil
	}

	warehouses := make([]Warehouse, 0, len(raw))
	for _, item := range raw {
		var w wireWarehouse
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		warehouses = append(warehouses, Warehouse{
			Ref:         w.Ref,
			Number:      w.Number,
			Description: w.Description,
			CityRef:     w.CityRef,
		})
	}
	return warehouses, nil
}

func (c *Client) call(ctx context.Context, req apiRequest) ([]json.RawMessage, error) {
	req.APIKey = c.apiKey

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var out apiResponse
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("nova poshta returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("nova poshta returned status %d", resp.StatusCode)
		}

		out = apiResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !out.Success {
		return nil, fmt.Errorf("nova poshta call %s rejected: %v", req.CalledMethod, out.Errors)
	}
	return out.Data, nil
}
