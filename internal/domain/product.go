package domain

import "time"

// Product represents a catalog product as published by the content store.
// The content store owns products; this service only reads them.
// Optional size/calculator fields are pointers because they are
// independently nullable upstream.
type Product struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	OldPrice     *float64  `json:"old_price,omitempty"`
	Image        string    `json:"image,omitempty"`
	Images       []string  `json:"images,omitempty"`
	Category     string    `json:"category,omitempty"`
	CategorySlug string    `json:"category_slug,omitempty"`
	SKU          string    `json:"sku,omitempty"`
	Material     string    `json:"material,omitempty"`
	Color        string    `json:"color,omitempty"`
	Sizes        []string  `json:"sizes,omitempty"`
	Width        *float64  `json:"width,omitempty"`
	Height       *float64  `json:"height,omitempty"`
	PricePerSqm  *float64  `json:"price_per_sqm,omitempty"`
	MinWidth     *float64  `json:"min_width,omitempty"`
	MaxWidth     *float64  `json:"max_width,omitempty"`
	MinHeight    *float64  `json:"min_height,omitempty"`
	MaxHeight    *float64  `json:"max_height,omitempty"`
	FixedHeight  *float64  `json:"fixed_height,omitempty"`
	InStock      bool      `json:"in_stock"`
	IsNew        bool      `json:"is_new,omitempty"`
	IsHit        bool      `json:"is_hit,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	ReviewsCount int       `json:"reviews_count,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Category represents a product category
type Category struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
	ParentID      string `json:"parent_id,omitempty"`
	ProductsCount int    `json:"products_count,omitempty"`
}

// PricingKind distinguishes the three ways a product can be priced.
type PricingKind string

const (
	// PricingFixed: the product's own price is final, no size selection.
	PricingFixed PricingKind = "fixed"
	// PricingDiscrete: the catalog enumerates every sellable size as a
	// distinct priced entry.
	PricingDiscrete PricingKind = "discrete"
	// PricingContinuous: price is computed from requested dimensions
	// using a per-area rate.
	PricingContinuous PricingKind = "continuous"
)

// SizeVariant is one sellable width×height combination of a product
// family. Unique within a PricingMode by (Width, Height).
type SizeVariant struct {
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Price    float64  `json:"price"`
	OldPrice *float64 `json:"old_price,omitempty"`
	InStock  bool     `json:"in_stock"`
	Slug     string   `json:"slug"`
	Label    string   `json:"label"`
	Current  bool     `json:"current,omitempty"`
}

// SizeBounds are the effective clamping ranges for continuous pricing,
// in centimeters.
type SizeBounds struct {
	MinWidth  float64 `json:"min_width"`
	MaxWidth  float64 `json:"max_width"`
	MinHeight float64 `json:"min_height"`
	MaxHeight float64 `json:"max_height"`
}

// PricingMode is the resolved pricing shape of a product, computed once
// by the variant resolver and passed down. Exactly one of the mode
// payloads is meaningful for a given Kind.
type PricingMode struct {
	Kind PricingKind `json:"kind"`

	// Discrete mode: the sorted, deduplicated size options.
	Options []SizeVariant `json:"options,omitempty"`

	// Continuous mode: the per-square-meter rate and clamping bounds.
	RatePerSqm  float64     `json:"rate_per_sqm,omitempty"`
	Bounds      *SizeBounds `json:"bounds,omitempty"`
	FixedHeight *float64    `json:"fixed_height,omitempty"`

	// Fixed mode: an informational size label, empty when unknown.
	SizeLabel string `json:"size_label,omitempty"`
}
