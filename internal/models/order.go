package models

import "time"

// Order is a placed order as returned by the store API.
type Order struct {
	ID                string          `json:"_id"`
	OrderID           int             `json:"id,omitempty"`
	User              *User           `json:"user,omitempty"`
	CartItems         []CartItem      `json:"cartItems"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	TaxPrice          float64         `json:"taxPrice"`
	ShippingPrice     float64         `json:"shippingPrice"`
	TotalOrderPrice   float64         `json:"totalOrderPrice"`
	PaymentMethodType string          `json:"paymentMethodType"`
	IsPaid            bool            `json:"isPaid"`
	IsDelivered       bool            `json:"isDelivered"`
	PaidAt            *time.Time      `json:"paidAt,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ShortID is the abbreviated order id shown in tables.
func (o Order) ShortID() string {
	if len(o.ID) > 12 {
		return o.ID[:12] + "..."
	}
	return o.ID
}

// ShippingAddress is the checkout form payload.
type ShippingAddress struct {
	Details string `json:"details" form:"details" binding:"required"`
	Phone   string `json:"phone" form:"phone" binding:"required,egphone"`
	City    string `json:"city" form:"city" binding:"required"`
}

// CheckoutResult is the response of the checkout-session endpoint.
type CheckoutResult struct {
	Status  string `json:"status"`
	Session struct {
		URL string `json:"url"`
	} `json:"session"`
}

// Revenue sums totalOrderPrice over orders.
func Revenue(orders []Order) float64 {
	total := 0.0
	for _, o := range orders {
		total += o.TotalOrderPrice
	}
	return total
}
