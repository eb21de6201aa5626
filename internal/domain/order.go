package domain

// PaymentMethod selects which payment collaborator handles the checkout.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodLiqPay PaymentMethod = "liqpay"
	PaymentMethodCash   PaymentMethod = "cash"
)

// Customer holds the contact fields forwarded to payment providers.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ShippingAddress is the delivery-partner destination chosen at checkout.
type ShippingAddress struct {
	City         string `json:"city"`
	CityRef      string `json:"city_ref,omitempty"`
	Warehouse    string `json:"warehouse"`
	WarehouseRef string `json:"warehouse_ref,omitempty"`
}
