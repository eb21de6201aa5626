package payment

import (
	"context"
	"fmt"
	"math"

	"shtora-api/internal/domain"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

// StripeConfig carries the API keys and redirect endpoints for the
// hosted checkout session flow.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	AppURL        string
}

// StripeClient wraps the Stripe SDK for hosted checkout sessions and
// webhook verification.
type StripeClient struct {
	api *client.API
	cfg StripeConfig
}

// NewStripeClient creates a Stripe client.
func NewStripeClient(cfg StripeConfig) *StripeClient {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeClient{api: api, cfg: cfg}
}

// CreateCheckoutSession opens a hosted checkout session for the cart and
// returns the redirect URL. Amounts are converted to minor units the way
// the provider expects.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, orderID string, items []domain.CartItem, customerEmail string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.cfg.AppURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.AppURL + "/cart"),
		LineItems:  checkoutLineItems(items),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"UA"}),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}

	session, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return session.URL, nil
}

func checkoutLineItems(items []domain.CartItem) []*stripe.CheckoutSessionLineItemParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("uah"),
				UnitAmount: stripe.Int64(int64(math.Round(item.Price * 100))),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
					Metadata: map[string]string{
						"product_id": item.ID,
						"size":       item.Size,
						"color":      item.Color,
					},
				},
			},
		})
	}
	return lineItems
}

// ConstructWebhookEvent verifies the webhook signature and parses the
// event. An invalid signature is an error; callers answer 400.
func (s *StripeClient) ConstructWebhookEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, s.cfg.WebhookSecret)
}
