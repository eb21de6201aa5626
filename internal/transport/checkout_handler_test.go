package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"shtora-api/internal/payment"
	"shtora-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockCheckoutService struct {
	result *service.CheckoutResult
	err    error

	gotCartID string
	gotReq    service.CheckoutRequest
}

func (m *mockCheckoutService) Checkout(ctx context.Context, cartID string, req service.CheckoutRequest) (*service.CheckoutResult, error) {
	m.gotCartID = cartID
	m.gotReq = req
	return m.result, m.err
}

func (m *mockCheckoutService) ShippingFee(subtotal float64) float64 {
	if subtotal >= 2000 {
		return 0
	}
	return 80
}

type mockWebhookVerifier struct {
	event stripe.Event
	err   error
}

func (m *mockWebhookVerifier) ConstructWebhookEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return m.event, m.err
}

func newCheckoutRouter(checkout *mockCheckoutService, webhook *mockWebhookVerifier) (chi.Router, *payment.LiqPayClient) {
	lp := payment.NewLiqPayClient(payment.LiqPayConfig{
		PublicKey:  "pub",
		PrivateKey: "priv",
		AppURL:     "https://shtora.example",
	})

	r := chi.NewRouter()
	NewCheckoutHandler(checkout, newMockCartService(), lp, webhook, zap.NewNop()).RegisterRoutes(r)
	return r, lp
}

func validCheckoutBody() string {
	return `{
		"first_name": "Олена",
		"last_name": "Коваль",
		"email": "olena@example.com",
		"phone": "+380501234567",
		"city": "Київ",
		"warehouse": "Відділення №1",
		"payment_method": "liqpay"
	}`
}

func TestCheckout(t *testing.T) {
	checkout := &mockCheckoutService{
		result: &service.CheckoutResult{OrderID: "SHTORA-TEST-ABC123", Total: 1880},
	}
	router, _ := newCheckoutRouter(checkout, &mockWebhookVerifier{})

	r := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(validCheckoutBody()))
	r.Header.Set("X-Cart-ID", "visitor-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "visitor-1", checkout.gotCartID)
	assert.Equal(t, "Олена", checkout.gotReq.Customer.FirstName)
	assert.Equal(t, "Київ", checkout.gotReq.Address.City)

	var result service.CheckoutResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "SHTORA-TEST-ABC123", result.OrderID)
}

func TestCheckout_RequiresCartID(t *testing.T) {
	router, _ := newCheckoutRouter(&mockCheckoutService{}, &mockWebhookVerifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/checkout",
		bytes.NewBufferString(validCheckoutBody())))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_ValidatesPaymentMethod(t *testing.T) {
	router, _ := newCheckoutRouter(&mockCheckoutService{}, &mockWebhookVerifier{})

	body := strings.Replace(validCheckoutBody(), `"liqpay"`, `"crypto"`, 1)
	r := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(body))
	r.Header.Set("X-Cart-ID", "visitor-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_errors")
}

func TestCheckout_EmptyCartIs400(t *testing.T) {
	router, _ := newCheckoutRouter(&mockCheckoutService{err: service.ErrEmptyCart}, &mockWebhookVerifier{})

	r := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(validCheckoutBody()))
	r.Header.Set("X-Cart-ID", "visitor-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckout_ProviderOutageIs502(t *testing.T) {
	router, _ := newCheckoutRouter(&mockCheckoutService{err: service.ErrPaymentProviderError}, &mockWebhookVerifier{})

	r := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(validCheckoutBody()))
	r.Header.Set("X-Cart-ID", "visitor-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func signedCallbackForm(t *testing.T, lp *payment.LiqPayClient, callback payment.LiqPayCallback) url.Values {
	t.Helper()
	raw, err := json.Marshal(callback)
	require.NoError(t, err)

	data := base64.StdEncoding.EncodeToString(raw)
	return url.Values{
		"data":      {data},
		"signature": {lp.Sign(data)},
	}
}

func postForm(router chi.Router, path string, form url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestLiqPayCallback(t *testing.T) {
	router, lp := newCheckoutRouter(&mockCheckoutService{}, &mockWebhookVerifier{})

	form := signedCallbackForm(t, lp, payment.LiqPayCallback{
		Status:  "success",
		OrderID: "SHTORA-TEST-ABC123",
		Amount:  1880,
	})

	w := postForm(router, "/api/payments/liqpay/callback", form)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLiqPayCallback_RejectsBadSignature(t *testing.T) {
	router, lp := newCheckoutRouter(&mockCheckoutService{}, &mockWebhookVerifier{})

	form := signedCallbackForm(t, lp, payment.LiqPayCallback{Status: "success", OrderID: "SHTORA-X"})
	form.Set("signature", "forged")

	w := postForm(router, "/api/payments/liqpay/callback", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLiqPayCallback_RejectsMissingFields(t *testing.T) {
	router, _ := newCheckoutRouter(&mockCheckoutService{}, &mockWebhookVerifier{})

	w := postForm(router, "/api/payments/liqpay/callback", url.Values{"data": {"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhook(t *testing.T) {
	webhook := &mockWebhookVerifier{
		event: stripe.Event{ID: "evt_1", Type: "checkout.session.completed"},
	}
	router, _ := newCheckoutRouter(&mockCheckoutService{}, webhook)

	r := httptest.NewRequest(http.MethodPost, "/api/payments/stripe/webhook",
		bytes.NewBufferString(`{}`))
	r.Header.Set("Stripe-Signature", "t=1,v1=abc")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeWebhook_PaymentIntentEvents(t *testing.T) {
	cases := []struct {
		eventType stripe.EventType
		level     zapcore.Level
	}{
		{"payment_intent.succeeded", zapcore.InfoLevel},
		{"payment_intent.payment_failed", zapcore.WarnLevel},
	}

	for _, tc := range cases {
		t.Run(string(tc.eventType), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			lp := payment.NewLiqPayClient(payment.LiqPayConfig{PublicKey: "pub", PrivateKey: "priv"})
			webhook := &mockWebhookVerifier{event: stripe.Event{ID: "evt_pi", Type: tc.eventType}}

			router := chi.NewRouter()
			NewCheckoutHandler(&mockCheckoutService{}, newMockCartService(), lp, webhook, zap.New(core)).RegisterRoutes(router)

			r := httptest.NewRequest(http.MethodPost, "/api/payments/stripe/webhook",
				bytes.NewBufferString(`{}`))
			r.Header.Set("Stripe-Signature", "t=1,v1=abc")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, http.StatusOK, w.Code)

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level)
			assert.Equal(t, "evt_pi", entries[0].ContextMap()["event_id"])
		})
	}
}

func TestStripeWebhook_RejectsBadSignature(t *testing.T) {
	router, _ := newCheckoutRouter(&mockCheckoutService{}, &mockWebhookVerifier{err: assert.AnError})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/payments/stripe/webhook",
		bytes.NewBufferString(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
