package transport

import (
	"errors"
	"net/http"
	"time"

	"shtora-api/internal/domain"
	"shtora-api/internal/middleware"
	"shtora-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	cartIDHeader = "X-Cart-ID"
	cartIDCookie = "cart_id"
)

// AddItemRequest is a line to add to the cart.
type AddItemRequest struct {
	ID           string   `json:"id" validate:"required"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name" validate:"required"`
	Price        float64  `json:"price" validate:"required,gt=0"`
	Image        string   `json:"image"`
	Quantity     int      `json:"quantity"`
	Size         string   `json:"size"`
	Color        string   `json:"color"`
	CustomWidth  *float64 `json:"custom_width,omitempty"`
	CustomHeight *float64 `json:"custom_height,omitempty"`
}

// UpdateQuantityRequest changes the quantity of one cart line.
type UpdateQuantityRequest struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

// CartResponse is the cart payload plus the id the client should keep.
type CartResponse struct {
	CartID     string            `json:"cart_id"`
	Items      []domain.CartItem `json:"items"`
	Total      float64           `json:"total"`
	ItemsCount int               `json:"items_count"`
}

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	carts  service.CartService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// RegisterRoutes registers all cart routes.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items", h.UpdateQuantity)
		r.Delete("/items/{id}", h.RemoveItem)
	})
}

// cartID resolves the client's cart id from the header or cookie,
// minting a new one for first-time visitors.
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(cartIDHeader)
	if id == "" {
		if cookie, err := r.Cookie(cartIDCookie); err == nil {
			id = cookie.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	w.Header().Set(cartIDHeader, id)
	http.SetCookie(w, &http.Cookie{
		Name:     cartIDCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *CartHandler) respondCart(w http.ResponseWriter, cartID string, cart *domain.Cart) {
	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{
		CartID:     cartID,
		Items:      cart.Items,
		Total:      cart.Total(),
		ItemsCount: cart.ItemsCount(),
	})
}

func (h *CartHandler) respondCartError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrCartUnavailable) {
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "cart temporarily unavailable")
		return
	}
	middleware.RespondWithError(w, http.StatusInternalServerError, "cart operation failed")
}

// GetCart returns the current cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	cart, err := h.carts.Get(r.Context(), cartID)
	if err != nil {
		h.logger.Error("Cart load failed", zap.String("cart_id", cartID), zap.Error(err))
		h.respondCartError(w, err)
		return
	}

	h.respondCart(w, cartID, cart)
}

// AddItem adds a line to the cart, merging with an existing line when
// the product, size and color all match.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.carts.AddItem(r.Context(), cartID, domain.CartItem{
		ID:           req.ID,
		Slug:         req.Slug,
		Name:         req.Name,
		Price:        req.Price,
		Image:        req.Image,
		Quantity:     req.Quantity,
		Size:         req.Size,
		Color:        req.Color,
		CustomWidth:  req.CustomWidth,
		CustomHeight: req.CustomHeight,
	})
	if err != nil {
		h.logger.Error("Cart add failed", zap.String("cart_id", cartID), zap.Error(err))
		h.respondCartError(w, err)
		return
	}

	h.respondCart(w, cartID, cart)
}

// UpdateQuantity sets a line's quantity; zero or negative removes it.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), cartID, req.ID, req.Quantity, req.Size)
	if err != nil {
		h.logger.Error("Cart update failed", zap.String("cart_id", cartID), zap.Error(err))
		h.respondCartError(w, err)
		return
	}

	h.respondCart(w, cartID, cart)
}

// RemoveItem deletes a line. Removing an absent line is a no-op, not an
// error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)
	productID := chi.URLParam(r, "id")
	size := r.URL.Query().Get("size")

	cart, err := h.carts.RemoveItem(r.Context(), cartID, productID, size)
	if err != nil {
		h.logger.Error("Cart remove failed", zap.String("cart_id", cartID), zap.Error(err))
		h.respondCartError(w, err)
		return
	}

	h.respondCart(w, cartID, cart)
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cartID := h.cartID(w, r)

	cart, err := h.carts.Clear(r.Context(), cartID)
	if err != nil {
		h.logger.Error("Cart clear failed", zap.String("cart_id", cartID), zap.Error(err))
		h.respondCartError(w, err)
		return
	}

	h.respondCart(w, cartID, cart)
}
