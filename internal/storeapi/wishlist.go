package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/models"
)

// GetWishlist returns the visitor's wishlist products.
func (c *Conn) GetWishlist(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if _, err := c.getData(ctx, "/wishlist", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// AddToWishlist adds productID. The API answers with product ids only.
func (c *Conn) AddToWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodPost, "/wishlist", nil, map[string]string{"productId": productID}, nil)
}

// RemoveFromWishlist removes productID.
func (c *Conn) RemoveFromWishlist(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, nil, nil)
}
