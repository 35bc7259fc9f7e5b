package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/guard"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/storeapi"
)

// RegisterPage renders the sign-up form.
func (h *Handler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{
		"title": "Register",
		"form":  models.SignUpForm{},
	})
}

// HandleRegister creates an account and signs the visitor in.
func (h *Handler) HandleRegister(c *gin.Context) {
	var form models.SignUpForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "register.html", gin.H{
			"title":  "Register",
			"form":   form,
			"errors": fieldErrors(err),
		})
		return
	}

	res, err := h.client.Anonymous().SignUp(c.Request.Context(), form)
	if err != nil {
		h.logger.Warn("Sign-up failed", "email", form.Email, "error", err)
		h.render(c, http.StatusOK, "register.html", gin.H{
			"title": "Register",
			"form":  form,
			"error": storeapi.Message(err, "Registration failed"),
		})
		return
	}

	if err := h.signIn(c, res.Token); err != nil {
		h.logger.Error("Storing session failed", "error", err)
		h.render(c, http.StatusInternalServerError, "register.html", gin.H{
			"title": "Register",
			"form":  form,
			"error": sessionFailed,
		})
		return
	}
	h.security.LogSecurityEvent(services.EventSignUp, form.Email, c.ClientIP())
	h.done(c, "Welcome to FreshCart, "+res.User.Name+"!", guard.HomePath)
}

// LoginPage renders the sign-in form.
func (h *Handler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{
		"title": "Login",
		"form":  models.SignInForm{},
	})
}

// HandleLogin signs the visitor in and stores the returned token.
func (h *Handler) HandleLogin(c *gin.Context) {
	var form models.SignInForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "login.html", gin.H{
			"title":  "Login",
			"form":   models.SignInForm{Email: form.Email},
			"errors": fieldErrors(err),
		})
		return
	}

	res, err := h.client.Anonymous().SignIn(c.Request.Context(), form)
	if err != nil {
		h.security.LogSecurityEvent(services.EventSignInFailed, form.Email, c.ClientIP())
		msg := storeapi.Message(err, "Login failed")
		if errors.Is(err, storeapi.ErrUnauthorized) {
			msg = storeapi.Message(err, "Incorrect email or password")
		}
		h.render(c, http.StatusOK, "login.html", gin.H{
			"title": "Login",
			"form":  models.SignInForm{Email: form.Email},
			"error": msg,
		})
		return
	}

	if err := h.signIn(c, res.Token); err != nil {
		h.logger.Error("Storing session failed", "error", err)
		h.render(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "Login",
			"form":  models.SignInForm{Email: form.Email},
			"error": sessionFailed,
		})
		return
	}
	h.security.LogSecurityEvent(services.EventSignIn, form.Email, c.ClientIP())
	h.done(c, "", guard.HomePath)
}

// Logout forgets the token and returns to the sign-in page.
func (h *Handler) Logout(c *gin.Context) {
	if h.state(c).session.IsAuthenticated() {
		h.security.LogSecurityEvent(services.EventSignOut, "", c.ClientIP())
	}
	h.signOut(c)
	h.done(c, "You have been signed out.", guard.LoginPath)
}
