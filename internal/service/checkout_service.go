package service

import (
	"context"
	"errors"
	"fmt"

	"shtora-api/internal/domain"
	"shtora-api/internal/payment"

	"go.uber.org/zap"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrUnsupportedPayment   = errors.New("unsupported payment method")
	ErrPaymentProviderError = errors.New("payment provider request failed")
)

// ShippingConfig is the flat-fee shipping rule: free above the
// threshold, a flat fee below it.
type ShippingConfig struct {
	FreeThreshold float64
	FlatFee       float64
}

// Fee returns the shipping fee for an order subtotal.
func (c ShippingConfig) Fee(subtotal float64) float64 {
	if subtotal >= c.FreeThreshold {
		return 0
	}
	return c.FlatFee
}

// HostedCheckout is the hosted-session payment collaborator (Stripe).
type HostedCheckout interface {
	CreateCheckoutSession(ctx context.Context, orderID string, items []domain.CartItem, customerEmail string) (string, error)
}

// SignedRedirect is the signature-based redirect collaborator (LiqPay).
type SignedRedirect interface {
	PaymentData(orderID string, amount float64, description string, customer *domain.Customer) (data, signature string, err error)
	PaymentURL(orderID string, amount float64, description string, customer *domain.Customer) (string, error)
}

// CheckoutRequest is what the storefront submits to start payment.
type CheckoutRequest struct {
	Customer domain.Customer
	Address  domain.ShippingAddress
	Method   domain.PaymentMethod
	Comment  string
}

// CheckoutResult tells the storefront how to continue: a redirect URL
// for hosted sessions, or the signed form fields for the redirect
// provider. Orders are not persisted; the order id is the correlation
// handle for payment callbacks.
type CheckoutResult struct {
	OrderID  string               `json:"order_id"`
	Method   domain.PaymentMethod `json:"method"`
	Subtotal float64              `json:"subtotal"`
	Shipping float64              `json:"shipping"`
	Total    float64              `json:"total"`

	RedirectURL      string `json:"redirect_url,omitempty"`
	PaymentData      string `json:"payment_data,omitempty"`
	PaymentSignature string `json:"payment_signature,omitempty"`
}

// CheckoutService turns a cart into a payment-provider handoff.
type CheckoutService interface {
	Checkout(ctx context.Context, cartID string, req CheckoutRequest) (*CheckoutResult, error)
	ShippingFee(subtotal float64) float64
}

type checkoutService struct {
	carts    CartService
	hosted   HostedCheckout
	signed   SignedRedirect
	shipping ShippingConfig
	logger   *zap.Logger
}

// NewCheckoutService creates a CheckoutService.
func NewCheckoutService(
	carts CartService,
	hosted HostedCheckout,
	signed SignedRedirect,
	shipping ShippingConfig,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutService{
		carts:    carts,
		hosted:   hosted,
		signed:   signed,
		shipping: shipping,
		logger:   logger,
	}
}

func (s *checkoutService) ShippingFee(subtotal float64) float64 {
	return s.shipping.Fee(subtotal)
}

// Checkout recomputes the totals from the current cart state, never from
// client-submitted amounts, and dispatches to the chosen provider.
func (s *checkoutService) Checkout(ctx context.Context, cartID string, req CheckoutRequest) (*CheckoutResult, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := cart.Total()
	shipping := s.shipping.Fee(subtotal)

	result := &CheckoutResult{
		OrderID:  payment.NewOrderID(),
		Method:   req.Method,
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}

	description := payment.OrderDescription(cart.Items)

	switch req.Method {
	case domain.PaymentMethodCard:
		url, err := s.hosted.CreateCheckoutSession(ctx, result.OrderID, cart.Items, req.Customer.Email)
		if err != nil {
			s.logger.Error("Hosted checkout session failed",
				zap.String("order_id", result.OrderID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrPaymentProviderError, err)
		}
		result.RedirectURL = url

	case domain.PaymentMethodLiqPay:
		data, signature, err := s.signed.PaymentData(result.OrderID, result.Total, description, &req.Customer)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentProviderError, err)
		}
		url, err := s.signed.PaymentURL(result.OrderID, result.Total, description, &req.Customer)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentProviderError, err)
		}
		result.PaymentData = data
		result.PaymentSignature = signature
		result.RedirectURL = url

	case domain.PaymentMethodCash:
		// Pay on delivery: nothing to hand off, the order id is enough.
		if _, err := s.carts.Clear(ctx, cartID); err != nil {
			s.logger.Warn("Failed to clear cart after checkout",
				zap.String("cart_id", cartID), zap.Error(err))
		}

	default:
		return nil, ErrUnsupportedPayment
	}

	s.logger.Info("Checkout dispatched",
		zap.String("order_id", result.OrderID),
		zap.String("method", string(req.Method)),
		zap.Float64("total", result.Total),
	)

	return result, nil
}
