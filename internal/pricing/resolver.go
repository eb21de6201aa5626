package pricing

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"shtora-api/internal/domain"
)

// StandardSizeLabel is shown when no size can be derived for a variant.
const StandardSizeLabel = "Standard"

// Size tokens embedded in product names, e.g. "100x170 см", "150х200",
// "80*120 mm". The upstream catalog has no explicit product-family key,
// so family membership is inferred by stripping these tokens.
var (
	sizeTokenRe   = regexp.MustCompile(`(?i)\s*(\d+)\s*[xх×*]\s*(\d+)\s*(см|мм|м|cm|mm|m)?`)
	straySuffixRe = regexp.MustCompile(`(?i)\s*[-–]\s*\d+\s*(см|мм|м|cm|mm|m)?`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// BaseName strips embedded size tokens and stray numeric suffixes from a
// product name, producing the family name used for sibling matching.
func BaseName(name string) string {
	base := sizeTokenRe.ReplaceAllString(name, " ")
	base = straySuffixRe.ReplaceAllString(base, " ")
	base = spacesRe.ReplaceAllString(base, " ")
	return strings.TrimSpace(base)
}

// SameFamily reports whether two product names belong to the same
// variant family: their stripped names are equal case-insensitively, or
// one contains the other to tolerate naming drift in the catalog.
func SameFamily(a, b string) bool {
	baseA := strings.ToLower(BaseName(a))
	baseB := strings.ToLower(BaseName(b))
	if baseA == "" || baseB == "" {
		return false
	}
	return baseA == baseB || strings.Contains(baseA, baseB) || strings.Contains(baseB, baseA)
}

// SizeFromName extracts a width×height pair embedded in a product name.
func SizeFromName(name string) (width, height float64, ok bool) {
	m := sizeTokenRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	width, errW := parseDimension(m[1])
	height, errH := parseDimension(m[2])
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

func parseDimension(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// variantSize resolves the (width, height) of a product, preferring its
// explicit fields over a size token in its name.
func variantSize(p domain.Product) (width, height float64, ok bool) {
	if p.Width != nil && p.Height != nil && *p.Width > 0 && *p.Height > 0 {
		return *p.Width, *p.Height, true
	}
	return SizeFromName(p.Name)
}

// SizeLabel derives a human-readable size for a product. Priority:
// explicit width/height fields, then a size token in the name, then the
// free-text sizes list, then empty.
func SizeLabel(p domain.Product) string {
	if p.Width != nil && p.Height != nil {
		return fmt.Sprintf("%g×%g см", *p.Width, *p.Height)
	}
	if w, h, ok := SizeFromName(p.Name); ok {
		return fmt.Sprintf("%g×%g см", w, h)
	}
	if len(p.Sizes) > 0 {
		return p.Sizes[0]
	}
	return ""
}

// variantLabel is SizeLabel with the placeholder fallback used inside a
// discrete picker, where every option needs some label.
func variantLabel(p domain.Product) string {
	if label := SizeLabel(p); label != "" {
		return label
	}
	return StandardSizeLabel
}

// Resolve decides the pricing mode of a product given candidate sibling
// products from the same category, and produces the normalized option
// list for discrete mode. Precedence: discrete variants, then the
// continuous calculator, then fixed. Fewer than two discrete entries is
// no real choice, so that case degrades to fixed with an informational
// label instead of an interactive picker.
func Resolve(product domain.Product, candidateSiblings []domain.Product) domain.PricingMode {
	options := collectVariants(product, candidateSiblings)
	if len(options) >= 2 {
		return domain.PricingMode{
			Kind:    domain.PricingDiscrete,
			Options: options,
		}
	}

	if hasCalculator(product) {
		bounds := Bounds(product)
		return domain.PricingMode{
			Kind:        domain.PricingContinuous,
			RatePerSqm:  RatePerSqm(product),
			Bounds:      &bounds,
			FixedHeight: product.FixedHeight,
		}
	}

	return domain.PricingMode{
		Kind:      domain.PricingFixed,
		SizeLabel: SizeLabel(product),
	}
}

// hasCalculator reports whether the product can be priced continuously:
// an explicit rate, a fixed-height product class, or a stated reference
// size from which a rate can be back-solved.
func hasCalculator(p domain.Product) bool {
	if p.PricePerSqm != nil || p.FixedHeight != nil {
		return true
	}
	return p.Width != nil && p.Height != nil
}

// collectVariants builds the discrete option list from the product and
// its same-family siblings, deduplicated by (width, height) and sorted
// ascending by width then height.
func collectVariants(product domain.Product, candidates []domain.Product) []domain.SizeVariant {
	var options []domain.SizeVariant
	seen := make(map[[2]float64]bool)

	appendVariant := func(p domain.Product, current bool) {
		width, height, ok := variantSize(p)
		if !ok {
			return
		}
		key := [2]float64{width, height}
		if seen[key] {
			return
		}
		seen[key] = true
		options = append(options, domain.SizeVariant{
			Width:    width,
			Height:   height,
			Price:    p.Price,
			OldPrice: p.OldPrice,
			InStock:  p.InStock,
			Slug:     p.Slug,
			Label:    variantLabel(p),
			Current:  current,
		})
	}

	appendVariant(product, true)
	for _, sibling := range candidates {
		if sibling.ID == product.ID {
			continue
		}
		if !SameFamily(sibling.Name, product.Name) {
			continue
		}
		appendVariant(sibling, false)
	}

	sort.Slice(options, func(i, j int) bool {
		if options[i].Width != options[j].Width {
			return options[i].Width < options[j].Width
		}
		return options[i].Height < options[j].Height
	})

	return options
}
