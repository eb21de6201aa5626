package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shtora-api/internal/domain"

	"github.com/google/uuid"
)

const (
	orderIDPrefix      = "SHTORA"
	descriptionMaxLen  = 200
	descriptionPrelude = "Замовлення SHTORA: "
)

// NewOrderID generates a human-readable order identifier, unique enough
// for payment-provider correlation without an order database.
func NewOrderID() string {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", orderIDPrefix, timestamp, random))
}

// OrderDescription summarizes the cart for payment-provider statements,
// truncated to the provider's length limit.
func OrderDescription(items []domain.CartItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}

	description := descriptionPrelude + strings.Join(parts, ", ")
	runes := []rune(description)
	if len(runes) > descriptionMaxLen {
		return string(runes[:descriptionMaxLen])
	}
	return description
}
