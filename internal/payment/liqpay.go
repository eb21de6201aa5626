// Package payment holds the two payment collaborator integrations: the
// signature-based LiqPay redirect flow and the Stripe hosted checkout
// session flow, plus order id generation shared by both.
package payment

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"

	"shtora-api/internal/domain"
)

const liqPayCheckoutURL = "https://www.liqpay.ua/api/3/checkout"

// LiqPay statuses that mean the payment went through. "sandbox" is what
// test-mode payments report.
var liqPaySuccessStatuses = map[string]bool{
	"success": true,
	"sandbox": true,
}

// LiqPayConfig carries the merchant keys and redirect endpoints.
type LiqPayConfig struct {
	PublicKey  string
	PrivateKey string
	Sandbox    bool
	AppURL     string
}

// LiqPayClient builds signed payment payloads and verifies callbacks.
// The request payload is base64-encoded JSON; the signature is
// base64(sha1(privateKey + data + privateKey)).
type LiqPayClient struct {
	cfg LiqPayConfig
}

// NewLiqPayClient creates a LiqPay client.
func NewLiqPayClient(cfg LiqPayConfig) *LiqPayClient {
	return &LiqPayClient{cfg: cfg}
}

type liqPayParams struct {
	Version         int     `json:"version"`
	PublicKey       string  `json:"public_key"`
	Action          string  `json:"action"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Description     string  `json:"description"`
	OrderID         string  `json:"order_id"`
	ResultURL       string  `json:"result_url,omitempty"`
	ServerURL       string  `json:"server_url,omitempty"`
	Language        string  `json:"language,omitempty"`
	Sandbox         int     `json:"sandbox"`
	SenderFirstName string  `json:"sender_first_name,omitempty"`
	SenderLastName  string  `json:"sender_last_name,omitempty"`
	SenderEmail     string  `json:"sender_email,omitempty"`
	SenderPhone     string  `json:"sender_phone,omitempty"`
}

// LiqPayCallback is the decoded server callback payload. Only the fields
// this service acts on are modeled.
type LiqPayCallback struct {
	PaymentID      int64   `json:"payment_id"`
	Action         string  `json:"action"`
	Status         string  `json:"status"`
	OrderID        string  `json:"order_id"`
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	TransactionID  int64   `json:"transaction_id"`
	ErrCode        string  `json:"err_code,omitempty"`
	ErrDescription string  `json:"err_description,omitempty"`
}

// Successful reports whether the callback means a completed payment.
func (c LiqPayCallback) Successful() bool {
	return liqPaySuccessStatuses[c.Status]
}

// Sign computes the request signature over the encoded data.
func (c *LiqPayClient) Sign(data string) string {
	sum := sha1.Sum([]byte(c.cfg.PrivateKey + data + c.cfg.PrivateKey))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// PaymentData builds the encoded payload and signature for a pay action.
// Customer contact fields are optional.
func (c *LiqPayClient) PaymentData(orderID string, amount float64, description string, customer *domain.Customer) (data, signature string, err error) {
	params := liqPayParams{
		Version:     3,
		PublicKey:   c.cfg.PublicKey,
		Action:      "pay",
		Amount:      amount,
		Currency:    "UAH",
		Description: description,
		OrderID:     orderID,
		ResultURL:   fmt.Sprintf("%s/checkout/success?order_id=%s", c.cfg.AppURL, url.QueryEscape(orderID)),
		ServerURL:   c.cfg.AppURL + "/api/payments/liqpay/callback",
		Language:    "uk",
	}
	if c.cfg.Sandbox {
		params.Sandbox = 1
	}
	if customer != nil {
		params.SenderFirstName = customer.FirstName
		params.SenderLastName = customer.LastName
		params.SenderEmail = customer.Email
		params.SenderPhone = customer.Phone
	}

	encoded, err := json.Marshal(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode payment params: %w", err)
	}

	data = base64.StdEncoding.EncodeToString(encoded)
	return data, c.Sign(data), nil
}

// PaymentURL builds the redirect URL carrying the signed payload.
func (c *LiqPayClient) PaymentURL(orderID string, amount float64, description string, customer *domain.Customer) (string, error) {
	data, signature, err := c.PaymentData(orderID, amount, description, customer)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?data=%s&signature=%s",
		liqPayCheckoutURL, url.QueryEscape(data), url.QueryEscape(signature)), nil
}

// VerifyCallback recomputes the signature over the callback data and
// compares in constant time.
func (c *LiqPayClient) VerifyCallback(data, signature string) bool {
	expected := c.Sign(data)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// DecodeCallback decodes the base64-JSON callback payload. Callers must
// verify the signature first.
func (c *LiqPayClient) DecodeCallback(data string) (*LiqPayCallback, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode callback data: %w", err)
	}

	var callback LiqPayCallback
	if err := json.Unmarshal(raw, &callback); err != nil {
		return nil, fmt.Errorf("failed to parse callback data: %w", err)
	}
	return &callback, nil
}
