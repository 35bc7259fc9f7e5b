package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/models"
)

func (c *Conn) cartCall(ctx context.Context, method, path string, body any) (*models.CartEnvelope, error) {
	var env models.Envelope
	if err := c.do(ctx, method, path, nil, body, &env); err != nil {
		return nil, err
	}
	var cart models.Cart
	if err := decodeData(env, &cart); err != nil {
		return nil, err
	}
	if cart.ID == "" {
		cart.ID = env.CartID
	}
	return &models.CartEnvelope{
		Status:         env.Status,
		NumOfCartItems: env.NumOfCartItems,
		Cart:           cart,
	}, nil
}

// GetCart returns the visitor's cart.
func (c *Conn) GetCart(ctx context.Context) (*models.CartEnvelope, error) {
	return c.cartCall(ctx, http.MethodGet, "/cart", nil)
}

// AddToCart adds one unit of productID and returns the updated cart.
func (c *Conn) AddToCart(ctx context.Context, productID string) (*models.CartEnvelope, error) {
	return c.cartCall(ctx, http.MethodPost, "/cart", map[string]string{"productId": productID})
}

// UpdateCartItem sets the count of productID and returns the updated cart.
func (c *Conn) UpdateCartItem(ctx context.Context, productID string, count int) (*models.CartEnvelope, error) {
	return c.cartCall(ctx, http.MethodPut, "/cart/"+url.PathEscape(productID), map[string]int{"count": count})
}

// RemoveCartItem drops productID and returns the updated cart.
func (c *Conn) RemoveCartItem(ctx context.Context, productID string) (*models.CartEnvelope, error) {
	return c.cartCall(ctx, http.MethodDelete, "/cart/"+url.PathEscape(productID), nil)
}

// ClearCart empties the cart.
func (c *Conn) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil, nil)
}
