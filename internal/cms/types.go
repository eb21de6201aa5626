package cms

import (
	"encoding/json"
	"time"

	"shtora-api/internal/domain"
)

// wireProduct is a product record as the content store returns it. The
// category relation may arrive as a nested object, a bare id, or null
// depending on the requested fields, so it is decoded lazily.
type wireProduct struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        float64         `json:"price"`
	OldPrice     *float64        `json:"old_price"`
	Image        string          `json:"image"`
	Images       []string        `json:"images"`
	Category     json.RawMessage `json:"category"`
	SKU          string          `json:"sku"`
	Material     string          `json:"material"`
	Color        string          `json:"color"`
	Sizes        []string        `json:"sizes"`
	Width        *float64        `json:"width"`
	Height       *float64        `json:"height"`
	PricePerSqm  *float64        `json:"price_per_sqm"`
	MinWidth     *float64        `json:"min_width"`
	MaxWidth     *float64        `json:"max_width"`
	MinHeight    *float64        `json:"min_height"`
	MaxHeight    *float64        `json:"max_height"`
	FixedHeight  *float64        `json:"fixed_height"`
	InStock      bool            `json:"in_stock"`
	IsNew        bool            `json:"is_new"`
	IsHit        bool            `json:"is_hit"`
	Rating       float64         `json:"rating"`
	ReviewsCount int             `json:"reviews_count"`
	DateCreated  *time.Time      `json:"date_created"`
	DateUpdated  *time.Time      `json:"date_updated"`
}

type wireCategory struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	Parent        string `json:"parent"`
	ProductsCount int    `json:"products_count"`
}

func (c *Client) toProduct(item wireProduct) domain.Product {
	p := domain.Product{
		ID:           item.ID,
		Slug:         item.Slug,
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price,
		OldPrice:     item.OldPrice,
		Image:        c.AssetURL(item.Image),
		SKU:          item.SKU,
		Material:     item.Material,
		Color:        item.Color,
		Sizes:        item.Sizes,
		Width:        item.Width,
		Height:       item.Height,
		PricePerSqm:  item.PricePerSqm,
		MinWidth:     item.MinWidth,
		MaxWidth:     item.MaxWidth,
		MinHeight:    item.MinHeight,
		MaxHeight:    item.MaxHeight,
		FixedHeight:  item.FixedHeight,
		InStock:      item.InStock,
		IsNew:        item.IsNew,
		IsHit:        item.IsHit,
		Rating:       item.Rating,
		ReviewsCount: item.ReviewsCount,
	}

	for _, imageID := range item.Images {
		if resolved := c.AssetURL(imageID); resolved != "" {
			p.Images = append(p.Images, resolved)
		}
	}

	if item.DateCreated != nil {
		p.CreatedAt = *item.DateCreated
	}
	if item.DateUpdated != nil {
		p.UpdatedAt = *item.DateUpdated
	}

	if len(item.Category) > 0 {
		var category wireCategory
		if err := json.Unmarshal(item.Category, &category); err == nil {
			p.Category = category.Name
			p.CategorySlug = category.Slug
		}
	}

	return p
}

func (c *Client) toCategory(item wireCategory) domain.Category {
	return domain.Category{
		ID:            item.ID,
		Slug:          item.Slug,
		Name:          item.Name,
		Description:   item.Description,
		Image:         c.AssetURL(item.Image),
		ParentID:      item.Parent,
		ProductsCount: item.ProductsCount,
	}
}
