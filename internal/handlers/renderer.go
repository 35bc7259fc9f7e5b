package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"storefront/internal/models"
)

// HTMLRenderer keeps a separate template set per page, each paired with
// base.html.
type HTMLRenderer struct {
	Templates map[string]*template.Template
}

// Instance implements render.HTMLRender.
func (r *HTMLRenderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.Templates[name]
	if !ok {
		tmpl = missingTemplate(name)
	}
	return render.HTML{
		Template: tmpl,
		Data:     data,
	}
}

func missingTemplate(name string) *template.Template {
	return template.Must(template.New(name).Parse(`template ` + template.HTMLEscapeString(name) + ` not found`))
}

// Pages lists every page template. Each is parsed together with base.html.
var Pages = []string{
	"register.html",
	"login.html",
	"home.html",
	"products.html",
	"product_details.html",
	"brands.html",
	"cart.html",
	"wishlist.html",
	"checkout.html",
	"order_success.html",
	"account.html",
	"not_found.html",
	"pending.html",
	"admin_dashboard.html",
	"admin_products.html",
	"admin_product_form.html",
	"admin_named.html",
	"admin_named_form.html",
	"admin_orders.html",
	"admin_order_detail.html",
	"admin_users.html",
	"admin_confirm_delete.html",
}

// LoadTemplates parses every page from fsys, which must contain a templates
// directory.
func LoadTemplates(fsys fs.FS) (*HTMLRenderer, error) {
	templates := make(map[string]*template.Template, len(Pages))
	for _, name := range Pages {
		tmpl, err := template.New(name).Funcs(TemplateFuncs).ParseFS(fsys, "templates/"+name, "templates/base.html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &HTMLRenderer{Templates: templates}, nil
}

// TemplateFuncs are available in every page.
var TemplateFuncs = template.FuncMap{
	"money": func(v float64) string {
		return fmt.Sprintf("%.2f EGP", v)
	},
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
	"truncate": func(s string, n int) string {
		words := strings.Fields(s)
		if len(words) <= n {
			return s
		}
		return strings.Join(words[:n], " ") + "..."
	},
	"stars": func(avg float64) int {
		return int(math.Round(avg))
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006")
	},
	"wished": func(set map[string]bool, p models.Product) bool {
		return set[p.ID] || set[p.MongoID]
	},
	"isAdmin": func(role string) bool {
		return role == models.RoleAdmin
	},
	"card": func(p models.Product, root any) map[string]any {
		return map[string]any{"Product": p, "Root": root}
	},
	"fieldErr": func(errs any, field string) string {
		if m, ok := errs.(map[string]string); ok {
			return m[field]
		}
		return ""
	},
}

// render adds the layout data every page needs and writes the page. When a
// store API call made while preparing the page revoked the session, the
// visitor is sent to sign in instead.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	st := h.state(c)
	if data == nil {
		data = gin.H{}
	}

	ctx := c.Request.Context()
	if st.session.IsAuthenticated() {
		if err := st.session.Resolve(ctx, st.conn); err != nil {
			h.logger.Debug("Identity unavailable for layout", "error", err)
		}
	}
	if st.session.IsAuthenticated() {
		v := h.visitor(c)
		if !v.Cart.Loaded() {
			if err := v.Cart.Load(ctx, st.conn); err != nil {
				h.logger.Warn("Cart load failed", "error", err)
			}
		}
		if !v.Wishlist.Loaded() {
			if err := v.Wishlist.Load(ctx, st.conn); err != nil {
				h.logger.Warn("Wishlist load failed", "error", err)
			}
		}
	}
	if st.forcedLogout {
		h.toLogin(c)
		return
	}

	snap := st.session.Snapshot()
	data["session"] = snap
	data["identity"] = snap.Identity
	data["isAdmin"] = st.session.IsAdmin()
	if snap.Authenticated {
		v := h.visitor(c)
		cs := v.Cart.Snapshot()
		ws := v.Wishlist.Snapshot()
		data["cartCount"] = cs.Count
		data["wishlistCount"] = ws.Count
		data["wished"] = wishedSet(ws.Products)
	}
	if _, ok := data["title"]; !ok {
		data["title"] = "FreshCart"
	}
	data["flash"] = h.popFlash(c)
	data["year"] = time.Now().Year()
	data["here"] = c.Request.URL.RequestURI()

	c.HTML(status, name, data)
}

func wishedSet(products []models.Product) map[string]bool {
	set := make(map[string]bool, len(products)*2)
	for _, p := range products {
		if p.ID != "" {
			set[p.ID] = true
		}
		if p.MongoID != "" {
			set[p.MongoID] = true
		}
	}
	return set
}

// NotFound renders the not-found page.
func (h *Handler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "not_found.html", gin.H{"title": "Page not found"})
}

// PendingPage is shown while the visitor's role cannot be verified. It
// carries no protected content.
func (h *Handler) PendingPage(c *gin.Context) {
	c.Header("Retry-After", "5")
	c.HTML(http.StatusServiceUnavailable, "pending.html", gin.H{
		"title":   "Verifying session",
		"session": h.state(c).session.Snapshot(),
		"retry":   c.Request.URL.RequestURI(),
		"year":    time.Now().Year(),
	})
}
