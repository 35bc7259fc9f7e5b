package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/storeapi"
)

// CartItemForm identifies a line item and, for updates, its new count.
type CartItemForm struct {
	ProductID string `form:"product_id" binding:"required"`
	Count     string `form:"count"`
}

// CartPage refreshes the cart from the store API and renders it.
func (h *Handler) CartPage(c *gin.Context) {
	v := h.visitor(c)
	err := v.Cart.Load(c.Request.Context(), h.state(c).conn)
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	h.render(c, http.StatusOK, "cart.html", gin.H{
		"title": "Cart",
		"cart":  v.Cart.Snapshot(),
	})
}

// AddToCart adds one unit of a product.
func (h *Handler) AddToCart(c *gin.Context) {
	var form CartItemForm
	if err := c.ShouldBind(&form); err != nil {
		h.done(c, "", backTo(c, "/cart"))
		return
	}
	if err := h.visitor(c).Cart.Add(c.Request.Context(), h.state(c).conn, form.ProductID); err != nil {
		h.fail(c, err, "Failed to add to cart", backTo(c, "/cart"))
		return
	}
	h.done(c, "Product added successfully to your cart", backTo(c, "/cart"))
}

// UpdateCartItem sets a line item's count. A count below one removes it.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var form CartItemForm
	if err := c.ShouldBind(&form); err != nil {
		h.done(c, "", "/cart")
		return
	}
	count, err := strconv.Atoi(form.Count)
	if err != nil {
		h.setFlash(c, flashError, "Quantity must be a number")
		h.done(c, "", "/cart")
		return
	}
	if err := h.visitor(c).Cart.SetQuantity(c.Request.Context(), h.state(c).conn, form.ProductID, count); err != nil {
		h.fail(c, err, "Failed to update cart", "/cart")
		return
	}
	h.done(c, "", "/cart")
}

// RemoveFromCart drops a line item.
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var form CartItemForm
	if err := c.ShouldBind(&form); err != nil {
		h.done(c, "", "/cart")
		return
	}
	if err := h.visitor(c).Cart.Remove(c.Request.Context(), h.state(c).conn, form.ProductID); err != nil {
		h.fail(c, err, "Failed to remove from cart", "/cart")
		return
	}
	h.done(c, "Product removed from your cart", "/cart")
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.visitor(c).Cart.Clear(c.Request.Context(), h.state(c).conn); err != nil {
		h.fail(c, err, "Failed to clear cart", "/cart")
		return
	}
	h.done(c, "Your cart is now empty", "/cart")
}

// WishlistPage refreshes the wishlist and renders it.
func (h *Handler) WishlistPage(c *gin.Context) {
	v := h.visitor(c)
	err := v.Wishlist.Load(c.Request.Context(), h.state(c).conn)
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	h.render(c, http.StatusOK, "wishlist.html", gin.H{
		"title":    "Wishlist",
		"wishlist": v.Wishlist.Snapshot(),
	})
}

// ToggleWishlist adds a product to the wishlist, or removes it when present.
func (h *Handler) ToggleWishlist(c *gin.Context) {
	var form CartItemForm
	if err := c.ShouldBind(&form); err != nil {
		h.done(c, "", backTo(c, "/wishlist"))
		return
	}
	wl := h.visitor(c).Wishlist
	ctx := c.Request.Context()
	conn := h.state(c).conn
	if !wl.Loaded() {
		if err := wl.Load(ctx, conn); err != nil {
			h.fail(c, err, "Failed to load wishlist", backTo(c, "/wishlist"))
			return
		}
	}

	msg := "Product added to your wishlist"
	if wl.Contains(form.ProductID) {
		msg = "Product removed from your wishlist"
	}
	if err := wl.Toggle(ctx, conn, form.ProductID); err != nil {
		h.fail(c, err, "Failed to update wishlist", backTo(c, "/wishlist"))
		return
	}
	h.done(c, msg, backTo(c, "/wishlist"))
}

// RemoveFromWishlist drops a product from the wishlist.
func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	var form CartItemForm
	if err := c.ShouldBind(&form); err != nil {
		h.done(c, "", "/wishlist")
		return
	}
	if err := h.visitor(c).Wishlist.Remove(c.Request.Context(), h.state(c).conn, form.ProductID); err != nil {
		h.fail(c, err, "Failed to remove from wishlist", "/wishlist")
		return
	}
	h.done(c, "Product removed from your wishlist", "/wishlist")
}
