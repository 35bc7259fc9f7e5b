package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/guard"
	"storefront/internal/services"
	"storefront/internal/session"
	"storefront/internal/storeapi"
)

// Deps are the collaborators a Handler needs.
type Deps struct {
	Client    *storeapi.Client
	Resolver  *session.Resolver
	Sealer    *session.Sealer
	Cookie    session.CookieOptions
	Visitors  *services.VisitorService
	Email     *services.EmailService
	Security  *services.SecurityLogger
	Logger    *slog.Logger
	PublicURL string
}

// Handler serves the storefront and admin pages.
type Handler struct {
	client    *storeapi.Client
	resolver  *session.Resolver
	sealer    *session.Sealer
	cookie    session.CookieOptions
	visitors  *services.VisitorService
	email     *services.EmailService
	security  *services.SecurityLogger
	logger    *slog.Logger
	publicURL string
}

// NewHandler wires a Handler from its dependencies.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client:    d.Client,
		resolver:  d.Resolver,
		sealer:    d.Sealer,
		cookie:    d.Cookie,
		visitors:  d.Visitors,
		email:     d.Email,
		security:  d.Security,
		logger:    logger,
		publicURL: d.PublicURL,
	}
}

const (
	stateKey      = "storefront.request"
	sessionFailed = "Could not store your session. Please try again."
)

// requestState is everything a request knows about its visitor.
type requestState struct {
	session      *session.Session
	store        session.Persister
	conn         *storeapi.Conn
	forcedLogout bool
}

// SessionMiddleware loads the visitor's token and binds a store API
// connection to it. A 401 from any call made with that connection clears
// the token cookie and drops the visitor's cached cart and wishlist.
func (h *Handler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := session.NewCookieStore(c, h.sealer, h.cookie)
		sess := session.New(store.Load(), h.resolver, store)
		st := &requestState{session: sess, store: store}
		st.conn = h.client.Bind(sess)

		sess.OnInvalidate(func(token string) {
			st.forcedLogout = true
			h.visitors.Drop(token)
			h.security.LogSecurityEvent(services.EventForcedLogout, c.Request.URL.Path, c.ClientIP())
		})

		c.Set(stateKey, st)
		c.Next()
	}
}

func (h *Handler) state(c *gin.Context) *requestState {
	if v, ok := c.Get(stateKey); ok {
		if st, ok := v.(*requestState); ok {
			return st
		}
	}
	// Routes mounted without SessionMiddleware act anonymously.
	sess := session.New("", h.resolver, nil)
	st := &requestState{session: sess, conn: h.client.Anonymous()}
	c.Set(stateKey, st)
	return st
}

func (h *Handler) visitor(c *gin.Context) *services.Visitor {
	return h.visitors.For(h.state(c).session.Token())
}

// signIn stores token as the visitor's credential. The session is left
// untouched when the cookie cannot be written.
func (h *Handler) signIn(c *gin.Context, token string) error {
	st := h.state(c)
	if st.store != nil {
		if err := st.store.Save(token); err != nil {
			return err
		}
	}
	if old := st.session.Token(); old != "" && old != token {
		h.visitors.Drop(old)
		h.resolver.Forget(old)
	}
	st.session.SetToken(token)
	return nil
}

// signOut forgets the visitor's credential without counting it as forced.
func (h *Handler) signOut(c *gin.Context) {
	st := h.state(c)
	old := st.session.Token()
	st.session.SetToken("")
	if st.store != nil {
		st.store.Remove()
	}
	if old != "" {
		h.visitors.Drop(old)
		h.resolver.Forget(old)
	}
}

// Snapshot resolves the session when the policy needs a verified identity.
// It is the guard's view of the request.
func (h *Handler) Snapshot(c *gin.Context, policy guard.Policy) session.Snapshot {
	st := h.state(c)
	if policy != guard.Guest && st.session.IsAuthenticated() {
		if err := st.session.Resolve(c.Request.Context(), st.conn); err != nil {
			h.logger.Warn("Session verification failed", "error", err, "path", c.Request.URL.Path)
		}
	}
	return st.session.Snapshot()
}

// Require returns the guard middleware for policy.
func (h *Handler) Require(policy guard.Policy) gin.HandlerFunc {
	return guard.Require(policy, h.Snapshot, h.PendingPage, h.onDenied)
}

func (h *Handler) onDenied(c *gin.Context, d guard.Decision) {
	if d.Redirect == guard.LoginPath && h.state(c).forcedLogout {
		h.setFlash(c, flashError, "Your session has expired. Please sign in again.")
	}
	if d.Redirect == guard.HomePath && h.state(c).session.IsAuthenticated() {
		h.security.LogSecurityEvent(services.EventAccessDenied, c.Request.URL.Path, c.ClientIP())
	}
}

// fail reports err for an action and redirects. Authorization failures go to
// the sign-in page; missing resources render the not-found page.
func (h *Handler) fail(c *gin.Context, err error, fallback, back string) {
	switch {
	case errors.Is(err, storeapi.ErrUnauthorized):
		h.toLogin(c)
	case errors.Is(err, storeapi.ErrNotFound):
		h.NotFound(c)
	default:
		h.logger.Error("Store API request failed", "error", err, "path", c.Request.URL.Path)
		h.setFlash(c, flashError, storeapi.Message(err, fallback))
		c.Redirect(http.StatusSeeOther, back)
	}
	c.Abort()
}

func (h *Handler) toLogin(c *gin.Context) {
	h.setFlash(c, flashError, "Your session has expired. Please sign in again.")
	c.Redirect(http.StatusSeeOther, guard.LoginPath)
	c.Abort()
}

func (h *Handler) done(c *gin.Context, msg, back string) {
	if msg != "" {
		h.setFlash(c, flashSuccess, msg)
	}
	c.Redirect(http.StatusSeeOther, back)
}
