package payment

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"shtora-api/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLiqPay() *LiqPayClient {
	return NewLiqPayClient(LiqPayConfig{
		PublicKey:  "sandbox_pub",
		PrivateKey: "sandbox_priv_key",
		Sandbox:    true,
		AppURL:     "https://shtora.example",
	})
}

func TestLiqPay_PaymentDataRoundTrip(t *testing.T) {
	lp := newTestLiqPay()

	customer := &domain.Customer{
		FirstName: "Олена",
		LastName:  "Коваль",
		Email:     "olena@example.com",
		Phone:     "+380501234567",
	}

	data, signature, err := lp.PaymentData("SHTORA-TEST-1", 1880, "Замовлення SHTORA: Штора Лофт x1", customer)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.NotEmpty(t, signature)

	// The payload is base64 JSON with the documented fields.
	raw, err := base64.StdEncoding.DecodeString(data)
	require.NoError(t, err)

	var params map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &params))
	assert.Equal(t, float64(3), params["version"])
	assert.Equal(t, "pay", params["action"])
	assert.Equal(t, float64(1880), params["amount"])
	assert.Equal(t, "UAH", params["currency"])
	assert.Equal(t, "SHTORA-TEST-1", params["order_id"])
	assert.Equal(t, float64(1), params["sandbox"])
	assert.Equal(t, "Олена", params["sender_first_name"])

	// The callback path verifies with the same signature scheme.
	assert.True(t, lp.VerifyCallback(data, signature))
}

func TestLiqPay_VerifyCallbackRejectsTampering(t *testing.T) {
	lp := newTestLiqPay()

	data, signature, err := lp.PaymentData("SHTORA-TEST-2", 100, "test", nil)
	require.NoError(t, err)

	assert.False(t, lp.VerifyCallback(data+"x", signature), "tampered data must fail")
	assert.False(t, lp.VerifyCallback(data, signature+"x"), "tampered signature must fail")

	other := NewLiqPayClient(LiqPayConfig{PublicKey: "p", PrivateKey: "another_key", AppURL: "https://shtora.example"})
	assert.False(t, other.VerifyCallback(data, signature), "a different private key must fail")
}

func TestLiqPay_DecodeCallback(t *testing.T) {
	lp := newTestLiqPay()

	payload := `{"payment_id":123,"action":"pay","status":"sandbox","order_id":"SHTORA-X","amount":1880,"currency":"UAH"}`
	data := base64.StdEncoding.EncodeToString([]byte(payload))

	callback, err := lp.DecodeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, "SHTORA-X", callback.OrderID)
	assert.Equal(t, float64(1880), callback.Amount)
	assert.True(t, callback.Successful())

	callback.Status = "failure"
	assert.False(t, callback.Successful())

	_, err = lp.DecodeCallback("not-base64!!")
	assert.Error(t, err)
}

func TestProperty_LiqPaySignatureRoundTrips(t *testing.T) {
	lp := newTestLiqPay()
	properties := gopter.NewProperties(nil)

	properties.Property("every signed payload verifies, every tampered one does not", prop.ForAll(
		func(orderID string, amount float64) bool {
			data, signature, err := lp.PaymentData(orderID, amount, "test order", nil)
			if err != nil {
				return false
			}
			if !lp.VerifyCallback(data, signature) {
				return false
			}
			return !lp.VerifyCallback(data, signature[:len(signature)-1])
		},
		gen.AlphaString(),
		gen.Float64Range(1, 100000),
	))

	properties.TestingRun(t)
}

func TestNewOrderID(t *testing.T) {
	first := NewOrderID()
	second := NewOrderID()

	assert.True(t, strings.HasPrefix(first, "SHTORA-"))
	assert.Equal(t, first, strings.ToUpper(first))
	assert.NotEqual(t, first, second)
}

func TestOrderDescription(t *testing.T) {
	items := []domain.CartItem{
		{Name: "Штора Лофт Чорна", Quantity: 2},
		{Name: "Тюль Грек", Quantity: 1},
	}

	description := OrderDescription(items)
	assert.Equal(t, "Замовлення SHTORA: Штора Лофт Чорна x2, Тюль Грек x1", description)
}

func TestOrderDescription_TruncatesLongCarts(t *testing.T) {
	long := strings.Repeat("Дуже довга назва штори ", 20)
	description := OrderDescription([]domain.CartItem{{Name: long, Quantity: 1}})
	assert.Equal(t, 200, len([]rune(description)))
}
