package models

import (
	"bytes"
	"encoding/json"
)

// Cart is the server-owned shopping cart.
type Cart struct {
	ID             string     `json:"_id"`
	CartOwner      string     `json:"cartOwner,omitempty"`
	Products       []CartItem `json:"products"`
	TotalCartPrice float64    `json:"totalCartPrice"`
}

// CartItem is a line item: a product reference, a unit price snapshot and a count.
type CartItem struct {
	ID      string     `json:"_id,omitempty"`
	Count   int        `json:"count"`
	Price   float64    `json:"price"`
	Product ProductRef `json:"product"`
}

// Subtotal is the line total computed from the price snapshot.
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Count)
}

// ProductRef is either a bare product id or an embedded product document.
// The cart endpoints return one or the other depending on the operation.
type ProductRef struct {
	Product
}

// UnmarshalJSON accepts a JSON string id or a product object.
func (r *ProductRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		r.Product = Product{ID: id, MongoID: id}
		return nil
	}
	return json.Unmarshal(b, &r.Product)
}

// MarshalJSON encodes the embedded product document.
func (r ProductRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Product)
}

// CartTotal recomputes the cart total from line items.
func CartTotal(items []CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}
