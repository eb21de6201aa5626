package pricing

import (
	"math"

	"shtora-api/internal/domain"
)

// Default dimensions used when a product carries no size information at
// all, matching the catalog's most common curtain size.
const (
	defaultWidthCm  = 100
	defaultHeightCm = 170
)

// ComputePrice maps a requested size in centimeters to a price using a
// per-square-meter rate, floored at the base price so a degenerate small
// size never prices below the catalog minimum. The result is rounded to
// whole currency units. Pure and idempotent: same inputs, same output.
func ComputePrice(widthCm, heightCm, ratePerSqm, basePrice float64) float64 {
	area := (widthCm / 100) * (heightCm / 100)
	price := area * ratePerSqm
	if price < basePrice {
		price = basePrice
	}
	return math.Round(price)
}

// Clamp restricts v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// referenceSize returns the product's own stated dimensions, falling
// back to catalog defaults when absent. FixedHeight wins over Height
// because non-adjustable products are always made at that height.
func referenceSize(p domain.Product) (width, height float64) {
	width = defaultWidthCm
	if p.Width != nil {
		width = *p.Width
	} else if p.MinWidth != nil {
		width = *p.MinWidth
	}

	height = defaultHeightCm
	switch {
	case p.FixedHeight != nil:
		height = *p.FixedHeight
	case p.Height != nil:
		height = *p.Height
	case p.MinHeight != nil:
		height = *p.MinHeight
	}
	return width, height
}

// RatePerSqm returns the product's explicit per-area rate, or back-solves
// it from the product's own stated size and price so the calculator stays
// consistent with the catalog price at the reference size.
func RatePerSqm(p domain.Product) float64 {
	if p.PricePerSqm != nil {
		return *p.PricePerSqm
	}
	refWidth, refHeight := referenceSize(p)
	area := (refWidth / 100) * (refHeight / 100)
	if area <= 0 {
		return 0
	}
	return p.Price / area
}

// Bounds returns the effective clamping ranges for a product. When a
// range bound is absent the product's own width/height serves as both the
// default and the sole bound, which disables customization on that axis.
func Bounds(p domain.Product) domain.SizeBounds {
	b := domain.SizeBounds{
		MinWidth:  30,
		MaxWidth:  300,
		MinHeight: 50,
		MaxHeight: 300,
	}
	if p.Width != nil {
		b.MinWidth = *p.Width
		b.MaxWidth = *p.Width
	}
	if p.MinWidth != nil {
		b.MinWidth = *p.MinWidth
	}
	if p.MaxWidth != nil {
		b.MaxWidth = *p.MaxWidth
	}
	if p.Height != nil {
		b.MinHeight = *p.Height
		b.MaxHeight = *p.Height
	}
	if p.MinHeight != nil {
		b.MinHeight = *p.MinHeight
	}
	if p.MaxHeight != nil {
		b.MaxHeight = *p.MaxHeight
	}
	return b
}

// Quote is a priced answer for a requested custom size. EffectiveWidth
// and EffectiveHeight are the dimensions actually used after clamping and
// fixed-height substitution; they must be echoed back so the purchase
// action never carries a stale or out-of-range size.
type Quote struct {
	Price           float64 `json:"price"`
	EffectiveWidth  float64 `json:"width"`
	EffectiveHeight float64 `json:"height"`
	RatePerSqm      float64 `json:"rate_per_sqm"`
}

// QuoteFor clamps the requested dimensions to the product's bounds,
// substitutes the fixed height when the product's height is not user
// adjustable, and computes the price. Malformed sizes are clamped into
// the valid range rather than rejected.
func QuoteFor(p domain.Product, widthCm, heightCm float64) Quote {
	bounds := Bounds(p)
	rate := RatePerSqm(p)

	width := Clamp(widthCm, bounds.MinWidth, bounds.MaxWidth)

	var height float64
	if p.FixedHeight != nil {
		height = *p.FixedHeight
	} else {
		height = Clamp(heightCm, bounds.MinHeight, bounds.MaxHeight)
	}

	return Quote{
		Price:           ComputePrice(width, height, rate, p.Price),
		EffectiveWidth:  width,
		EffectiveHeight: height,
		RatePerSqm:      rate,
	}
}
