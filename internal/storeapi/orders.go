package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/models"
)

// CheckoutSession opens a payment session for cartID. returnURL is where the
// payment provider sends the visitor afterwards.
func (c *Conn) CheckoutSession(ctx context.Context, cartID string, addr models.ShippingAddress, returnURL string) (*models.CheckoutResult, error) {
	var q url.Values
	if returnURL != "" {
		q = url.Values{"url": {returnURL}}
	}
	body := map[string]models.ShippingAddress{"shippingAddress": addr}

	var res models.CheckoutResult
	if err := c.do(ctx, http.MethodPost, "/orders/checkout-session/"+url.PathEscape(cartID), q, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListOrders returns every order (administrators only).
func (c *Conn) ListOrders(ctx context.Context) ([]models.Order, int, error) {
	var orders []models.Order
	env, err := c.getData(ctx, "/orders", nil, &orders)
	if err != nil {
		return nil, 0, err
	}
	return orders, env.Results, nil
}

// ListUserOrders returns the orders of one user. The endpoint answers with a
// bare JSON array.
func (c *Conn) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(userID), nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
