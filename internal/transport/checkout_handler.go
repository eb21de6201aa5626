package transport

import (
	"errors"
	"io"
	"net/http"

	"shtora-api/internal/domain"
	"shtora-api/internal/middleware"
	"shtora-api/internal/payment"
	"shtora-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// CheckoutRequest is the checkout form submission.
type CheckoutRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`

	City          string `json:"city" validate:"required"`
	CityRef       string `json:"city_ref"`
	WarehouseRef  string `json:"warehouse_ref"`
	Warehouse     string `json:"warehouse" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card liqpay cash"`
	Comment       string `json:"comment"`
}

// CallbackVerifier checks and decodes signed payment callbacks.
type CallbackVerifier interface {
	VerifyCallback(data, signature string) bool
	DecodeCallback(data string) (*payment.LiqPayCallback, error)
}

// WebhookVerifier checks hosted-checkout webhook signatures.
type WebhookVerifier interface {
	ConstructWebhookEvent(payload []byte, signatureHeader string) (stripe.Event, error)
}

// CheckoutHandler handles checkout and payment provider callbacks.
type CheckoutHandler struct {
	checkout service.CheckoutService
	carts    service.CartService
	callback CallbackVerifier
	webhook  WebhookVerifier
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(
	checkout service.CheckoutService,
	carts service.CartService,
	callback CallbackVerifier,
	webhook WebhookVerifier,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		carts:    carts,
		callback: callback,
		webhook:  webhook,
		logger:   logger,
	}
}

// RegisterRoutes registers checkout and payment callback routes.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/checkout", h.Checkout)
	r.Post("/api/payments/liqpay/callback", h.LiqPayCallback)
	r.Post("/api/payments/stripe/webhook", h.StripeWebhook)
}

// Checkout validates the order form and hands the cart off to the
// selected payment provider. Totals are always recomputed server side.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cartID := r.Header.Get(cartIDHeader)
	if cartID == "" {
		if cookie, err := r.Cookie(cartIDCookie); err == nil {
			cartID = cookie.Value
		}
	}
	if cartID == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkout.Checkout(r.Context(), cartID, service.CheckoutRequest{
		Customer: domain.Customer{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
		},
		Address: domain.ShippingAddress{
			City:         req.City,
			CityRef:      req.CityRef,
			Warehouse:    req.Warehouse,
			WarehouseRef: req.WarehouseRef,
		},
		Method:  domain.PaymentMethod(req.PaymentMethod),
		Comment: req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, service.ErrUnsupportedPayment):
			middleware.RespondWithError(w, http.StatusBadRequest, "unsupported payment method")
		case errors.Is(err, service.ErrCartUnavailable):
			middleware.RespondWithError(w, http.StatusServiceUnavailable, "cart temporarily unavailable")
		case errors.Is(err, service.ErrPaymentProviderError):
			middleware.RespondWithError(w, http.StatusBadGateway, "payment provider unavailable")
		default:
			h.logger.Error("Checkout failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// LiqPayCallback handles the server-to-server payment notification.
// Requests with a bad signature are rejected with 400.
func (h *CheckoutHandler) LiqPayCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid callback form")
		return
	}

	data := r.PostFormValue("data")
	signature := r.PostFormValue("signature")
	if data == "" || signature == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing callback fields")
		return
	}

	if !h.callback.VerifyCallback(data, signature) {
		h.logger.Warn("LiqPay callback signature mismatch")
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	callback, err := h.callback.DecodeCallback(data)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "malformed callback data")
		return
	}

	if callback.Successful() {
		h.logger.Info("Payment confirmed",
			zap.String("order_id", callback.OrderID),
			zap.Float64("amount", callback.Amount),
			zap.String("currency", callback.Currency),
		)
	} else {
		h.logger.Warn("Payment not completed",
			zap.String("order_id", callback.OrderID),
			zap.String("status", callback.Status),
			zap.String("err_code", callback.ErrCode),
		)
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StripeWebhook handles checkout session events. Requests that fail
// signature verification are rejected with 400.
func (h *CheckoutHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "unreadable webhook payload")
		return
	}

	event, err := h.webhook.ConstructWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("Stripe webhook signature mismatch", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.logger.Info("Hosted checkout completed", zap.String("event_id", event.ID))
	case "checkout.session.expired":
		h.logger.Info("Hosted checkout expired", zap.String("event_id", event.ID))
	case "payment_intent.succeeded":
		h.logger.Info("Payment intent succeeded", zap.String("event_id", event.ID))
	case "payment_intent.payment_failed":
		h.logger.Warn("Payment intent failed", zap.String("event_id", event.ID))
	default:
		h.logger.Debug("Ignoring webhook event", zap.String("type", string(event.Type)))
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
