package domain

// CartStatus tells whether a cart's persisted state has been restored.
// Until hydration completes the cart must be treated as unknown, not
// empty, so callers cannot mistake "not yet loaded" for "confirmed empty".
type CartStatus string

const (
	CartStatusUnknown CartStatus = "unknown"
	CartStatusEmpty   CartStatus = "empty"
	CartStatusLoaded  CartStatus = "loaded"
)

// CartItem is one line item in the cart. Price is the unit price at the
// time of add, already resolved for the chosen size. Line items are
// distinguished by (ID, Size, Color).
type CartItem struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug,omitempty"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Image        string   `json:"image,omitempty"`
	Quantity     int      `json:"quantity"`
	Size         string   `json:"size,omitempty"`
	Color        string   `json:"color,omitempty"`
	CustomWidth  *float64 `json:"custom_width,omitempty"`
	CustomHeight *float64 `json:"custom_height,omitempty"`
}

// Cart is the in-memory cart aggregate. Items keep insertion order for
// display; totals are always recomputed from current state. Mutations go
// through the defined operations only.
type Cart struct {
	Items  []CartItem `json:"items"`
	Status CartStatus `json:"status"`
}

// NewCart returns an empty, hydrated cart.
func NewCart() *Cart {
	return &Cart{Items: []CartItem{}, Status: CartStatusEmpty}
}

// matches reports whether the line item belongs to the same merge key.
// An empty size matches any size so removal by product id alone works
// the way the storefront expects.
func (i CartItem) matches(id, size string) bool {
	if i.ID != id {
		return false
	}
	return size == "" || i.Size == size
}

// AddItem merges the item into an existing line with the same
// (id, size, color) key by incrementing quantity, or appends a new line.
// Quantities below one are normalized to one so a line item can never be
// created with quantity <= 0.
func (c *Cart) AddItem(item CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for idx := range c.Items {
		existing := &c.Items[idx]
		if existing.ID == item.ID && existing.Size == item.Size && existing.Color == item.Color {
			existing.Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
	c.Status = CartStatusLoaded
}

// UpdateQuantity sets the quantity of the matching line item directly.
// A quantity of zero or less removes the line, same as RemoveItem.
func (c *Cart) UpdateQuantity(id string, quantity int, size string) {
	if quantity <= 0 {
		c.RemoveItem(id, size)
		return
	}
	for idx := range c.Items {
		if c.Items[idx].matches(id, size) {
			c.Items[idx].Quantity = quantity
			return
		}
	}
}

// RemoveItem drops every matching line item: with a size, the lines of
// that size; with an empty size, all lines of the product. Removing an
// absent item is a no-op, not an error.
func (c *Cart) RemoveItem(id string, size string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if !item.matches(id, size) {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Status = CartStatusEmpty
}

// Total is the sum of unit price times quantity over all line items.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ItemsCount is the sum of quantities over all line items.
func (c *Cart) ItemsCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// ItemByID returns the first line item with the given product id.
func (c *Cart) ItemByID(id string) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}
