package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/guard"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/storeapi"
)

// CheckoutForm is the shipping address plus an optional receipt address.
type CheckoutForm struct {
	models.ShippingAddress
	Email string `form:"email" binding:"omitempty,email"`
}

// CheckoutPage shows the cart summary and the shipping address form.
func (h *Handler) CheckoutPage(c *gin.Context) {
	v := h.visitor(c)
	err := v.Cart.Load(c.Request.Context(), h.state(c).conn)
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	h.render(c, http.StatusOK, "checkout.html", gin.H{
		"title": "Checkout",
		"cart":  v.Cart.Snapshot(),
		"form":  CheckoutForm{},
	})
}

// HandleCheckout opens a checkout session for the cart. On success the cart
// is cleared, a confirmation mail is sent and the visitor continues to the
// payment page when the API provides one.
func (h *Handler) HandleCheckout(c *gin.Context) {
	ctx := c.Request.Context()
	conn := h.state(c).conn
	v := h.visitor(c)

	if !v.Cart.Loaded() {
		if err := v.Cart.Load(ctx, conn); err != nil {
			h.fail(c, err, "Failed to load cart", "/order")
			return
		}
	}
	snap := v.Cart.Snapshot()

	var form CheckoutForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "checkout.html", gin.H{
			"title":  "Checkout",
			"cart":   snap,
			"form":   form,
			"errors": fieldErrors(err),
		})
		return
	}

	if snap.CartID == "" || len(snap.Items) == 0 {
		h.render(c, http.StatusOK, "checkout.html", gin.H{
			"title": "Checkout",
			"cart":  snap,
			"form":  form,
			"error": "Cart ID not found. Please add items to cart first.",
		})
		return
	}

	res, err := conn.CheckoutSession(ctx, snap.CartID, form.ShippingAddress, h.publicURL)
	if err != nil {
		if errors.Is(err, storeapi.ErrUnauthorized) {
			h.toLogin(c)
			return
		}
		h.logger.Error("HandleCheckout - checkout session", "cart_id", snap.CartID, "error", err)
		h.render(c, http.StatusOK, "checkout.html", gin.H{
			"title": "Checkout",
			"cart":  snap,
			"form":  form,
			"error": storeapi.Message(err, "Failed to place order"),
		})
		return
	}
	if res.Status != "success" {
		h.render(c, http.StatusOK, "checkout.html", gin.H{
			"title": "Checkout",
			"cart":  snap,
			"form":  form,
			"error": "Failed to place order",
		})
		return
	}

	if err := v.Cart.Clear(ctx, conn); err != nil {
		h.logger.Warn("HandleCheckout - clearing cart after order", "error", err)
	}
	h.sendConfirmation(c, form, snap)

	if res.Session.URL != "" {
		c.Redirect(http.StatusSeeOther, res.Session.URL)
		return
	}
	h.render(c, http.StatusOK, "order_success.html", gin.H{
		"title": "Order placed",
		"total": snap.Total,
	})
}

func (h *Handler) sendConfirmation(c *gin.Context, form CheckoutForm, snap cart.Snapshot) {
	if form.Email == "" {
		return
	}
	name := ""
	if id := h.state(c).session.Snapshot().Identity; id != nil {
		name = id.Name
	}
	err := h.email.SendOrderConfirmation(services.OrderConfirmation{
		To:      form.Email,
		Name:    name,
		Items:   snap.Items,
		Total:   snap.Total,
		Address: form.ShippingAddress,
	})
	if err != nil {
		h.logger.Warn("HandleCheckout - confirmation mail", "error", err)
	}
}

// AccountPage shows the profile and password forms and the visitor's orders.
func (h *Handler) AccountPage(c *gin.Context) {
	h.renderAccount(c, http.StatusOK, gin.H{})
}

func (h *Handler) renderAccount(c *gin.Context, status int, data gin.H) {
	data["title"] = "Account"
	snap := h.state(c).session.Snapshot()
	if _, ok := data["profile"]; !ok {
		profile := models.ProfileForm{}
		if snap.Identity != nil {
			profile.Name = snap.Identity.Name
		}
		data["profile"] = profile
	}
	if snap.Identity != nil && snap.Identity.ID != "" {
		orders, err := h.state(c).conn.ListUserOrders(c.Request.Context(), snap.Identity.ID)
		if err != nil {
			if errors.Is(err, storeapi.ErrUnauthorized) {
				h.toLogin(c)
				return
			}
			h.logger.Warn("AccountPage - listing orders", "error", err)
			data["ordersError"] = storeapi.Message(err, "Failed to load your orders")
		}
		data["orders"] = orders
	}
	h.render(c, status, "account.html", data)
}

// UpdateProfile edits name, email and phone.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var form models.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderAccount(c, http.StatusUnprocessableEntity, gin.H{
			"profile":       form,
			"profileErrors": fieldErrors(err),
		})
		return
	}
	if _, err := h.state(c).conn.UpdateMe(c.Request.Context(), form); err != nil {
		h.fail(c, err, "Failed to update profile", "/account")
		return
	}
	// The cached identity still carries the old name.
	h.resolver.Forget(h.state(c).session.Token())
	h.done(c, "Profile updated successfully", "/account")
}

// ChangePassword changes the password and adopts the token the API issues.
func (h *Handler) ChangePassword(c *gin.Context) {
	var form models.PasswordForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderAccount(c, http.StatusUnprocessableEntity, gin.H{
			"passwordErrors": fieldErrors(err),
		})
		return
	}
	res, err := h.state(c).conn.ChangeMyPassword(c.Request.Context(), form)
	if err != nil {
		h.fail(c, err, "Failed to change password", "/account")
		return
	}
	if res.Token != "" {
		if err := h.signIn(c, res.Token); err != nil {
			h.logger.Error("Storing session failed", "error", err)
			h.setFlash(c, flashError, sessionFailed)
			h.signOut(c)
			c.Redirect(http.StatusSeeOther, guard.LoginPath)
			return
		}
	}
	h.security.LogSecurityEvent(services.EventPasswordChange, "", c.ClientIP())
	h.done(c, "Password changed successfully", "/account")
}
