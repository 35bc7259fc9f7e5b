package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie  = "flash"
	flashMaxAge  = 10
	flashError   = "error"
	flashSuccess = "success"
)

// Flash is a one-shot banner carried to the next page in a cookie.
type Flash struct {
	Kind    string
	Message string
}

// setFlash queues a banner for the next rendered page. The cookie follows
// the token cookie's Secure setting.
func (h *Handler) setFlash(c *gin.Context, kind, msg string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(kind + "|" + msg))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, value, flashMaxAge, "/", "", h.cookie.Secure, true)
	c.Set(flashCookie, &Flash{Kind: kind, Message: msg})
}

// popFlash returns the pending banner, if any, and clears it.
func (h *Handler) popFlash(c *gin.Context) *Flash {
	// A banner set earlier in this request has not reached the browser yet.
	if v, ok := c.Get(flashCookie); ok {
		if f, ok := v.(*Flash); ok {
			c.SetCookie(flashCookie, "", -1, "/", "", h.cookie.Secure, true)
			return f
		}
	}

	value, err := c.Cookie(flashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, "", -1, "/", "", h.cookie.Secure, true)

	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), "|")
	if !ok || (kind != flashError && kind != flashSuccess) {
		return nil
	}
	return &Flash{Kind: kind, Message: msg}
}
