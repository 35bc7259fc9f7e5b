package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"storefront/internal/models"
	"storefront/internal/storeapi"
)

const (
	adminBatchSize = 100
	recentOrders   = 5
)

// DashboardPage fetches the product count, all orders and all users in
// parallel and summarizes them.
func (h *Handler) DashboardPage(c *gin.Context) {
	conn := h.state(c).conn
	var (
		productCount int
		orders       []models.Order
		userCount    int
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		page, err := conn.ListProducts(ctx, storeapi.ProductQuery{Limit: 1})
		if err != nil {
			return fmt.Errorf("counting products: %w", err)
		}
		productCount = page.Results
		return nil
	})
	g.Go(func() error {
		var err error
		if orders, _, err = conn.ListOrders(ctx); err != nil {
			return fmt.Errorf("listing orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		users, results, err := conn.ListUsers(ctx)
		if err != nil {
			return fmt.Errorf("listing users: %w", err)
		}
		userCount = max(results, len(users))
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, storeapi.ErrUnauthorized) {
			h.toLogin(c)
			return
		}
		h.logger.Error("DashboardPage - loading stats", "error", err)
		h.render(c, http.StatusOK, "admin_dashboard.html", gin.H{
			"title": "Dashboard",
			"error": storeapi.Message(err, "Failed to load dashboard data"),
		})
		return
	}

	h.render(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"title":        "Dashboard",
		"productCount": productCount,
		"orderCount":   len(orders),
		"userCount":    userCount,
		"revenue":      models.Revenue(orders),
		"recent":       latestOrders(orders, recentOrders),
	})
}

// latestOrders returns up to n orders, newest first.
func latestOrders(orders []models.Order, n int) []models.Order {
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// confirmDelete renders the delete confirmation step.
func (h *Handler) confirmDelete(c *gin.Context, resource, name, action, back string) {
	h.render(c, http.StatusOK, "admin_confirm_delete.html", gin.H{
		"title":    "Delete " + resource,
		"resource": resource,
		"name":     name,
		"action":   action,
		"back":     back,
	})
}

// Products

// AdminProducts lists the whole product collection.
func (h *Handler) AdminProducts(c *gin.Context) {
	products, err := h.state(c).conn.AllProducts(c.Request.Context(), storeapi.ProductQuery{Limit: adminBatchSize})
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	data := gin.H{"title": "Products"}
	if err != nil {
		h.logger.Error("AdminProducts - listing", "error", err)
		data["error"] = storeapi.Message(err, "Failed to load products")
	} else {
		data["products"] = products
	}
	h.render(c, http.StatusOK, "admin_products.html", data)
}

type productFormView struct {
	ID    string
	Input models.ProductInput
}

func productInputFrom(p *models.Product) models.ProductInput {
	qty := p.Quantity
	in := models.ProductInput{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    &qty,
		ImageCover:  p.ImageCover,
	}
	if p.Category != nil {
		in.Category = p.Category.ID
	}
	if p.Brand != nil {
		in.Brand = p.Brand.ID
	}
	return in
}

func (h *Handler) renderProductForm(c *gin.Context, status int, view productFormView, extra gin.H) {
	conn := h.state(c).conn
	var (
		brands     []models.Brand
		categories []models.Category
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		brands, err = conn.ListBrands(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = conn.ListCategories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, storeapi.ErrUnauthorized) {
			h.toLogin(c)
			return
		}
		h.logger.Warn("renderProductForm - loading options", "error", err)
	}

	title := "Add product"
	if view.ID != "" {
		title = "Edit product"
	}
	data := gin.H{
		"title":      title,
		"product":    view,
		"brands":     brands,
		"categories": categories,
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "admin_product_form.html", data)
}

// AdminNewProduct shows an empty product form.
func (h *Handler) AdminNewProduct(c *gin.Context) {
	h.renderProductForm(c, http.StatusOK, productFormView{}, nil)
}

// AdminEditProduct shows the form filled with an existing product.
func (h *Handler) AdminEditProduct(c *gin.Context) {
	p, err := h.state(c).conn.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "Failed to load product", "/admin/products")
		return
	}
	h.renderProductForm(c, http.StatusOK, productFormView{ID: c.Param("id"), Input: productInputFrom(p)}, nil)
}

// AdminSaveProduct creates a product, or updates it when the route has an id.
func (h *Handler) AdminSaveProduct(c *gin.Context) {
	id := c.Param("id")
	var in models.ProductInput
	if err := c.ShouldBind(&in); err != nil {
		h.renderProductForm(c, http.StatusUnprocessableEntity, productFormView{ID: id, Input: in}, gin.H{
			"errors": fieldErrors(err),
		})
		return
	}

	conn := h.state(c).conn
	ctx := c.Request.Context()
	var err error
	msg := "Product created successfully"
	if id == "" {
		err = conn.CreateProduct(ctx, in)
	} else {
		err = conn.UpdateProduct(ctx, id, in)
		msg = "Product updated successfully"
	}
	if err != nil {
		if errors.Is(err, storeapi.ErrUnauthorized) {
			h.toLogin(c)
			return
		}
		h.renderProductForm(c, http.StatusOK, productFormView{ID: id, Input: in}, gin.H{
			"error": storeapi.Message(err, "Failed to save product"),
		})
		return
	}
	h.done(c, msg, "/admin/products")
}

// AdminConfirmDeleteProduct asks before deleting a product.
func (h *Handler) AdminConfirmDeleteProduct(c *gin.Context) {
	id := c.Param("id")
	p, err := h.state(c).conn.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load product", "/admin/products")
		return
	}
	h.confirmDelete(c, "product", p.Title, "/admin/products/"+id+"/delete", "/admin/products")
}

// AdminDeleteProduct deletes a product.
func (h *Handler) AdminDeleteProduct(c *gin.Context) {
	if err := h.state(c).conn.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete product", "/admin/products")
		return
	}
	h.done(c, "Product deleted successfully", "/admin/products")
}

// Brands and categories

// namedRow is the table view of a brand or category.
type namedRow struct {
	ID    string
	Name  string
	Slug  string
	Image string
}

// namedResource adapts brands and categories to one set of admin pages.
type namedResource struct {
	path     string
	singular string
	plural   string
	list     func(ctx context.Context, conn *storeapi.Conn) ([]namedRow, error)
	get      func(ctx context.Context, conn *storeapi.Conn, id string) (namedRow, error)
	create   func(ctx context.Context, conn *storeapi.Conn, in models.NamedInput) error
	update   func(ctx context.Context, conn *storeapi.Conn, id string, in models.NamedInput) error
	remove   func(ctx context.Context, conn *storeapi.Conn, id string) error
}

var brandResource = namedResource{
	path:     "/admin/brands",
	singular: "brand",
	plural:   "Brands",
	list: func(ctx context.Context, conn *storeapi.Conn) ([]namedRow, error) {
		brands, err := conn.ListBrands(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]namedRow, len(brands))
		for i, b := range brands {
			rows[i] = namedRow{ID: b.ID, Name: b.Name, Slug: b.Slug, Image: b.Image}
		}
		return rows, nil
	},
	get: func(ctx context.Context, conn *storeapi.Conn, id string) (namedRow, error) {
		b, err := conn.GetBrand(ctx, id)
		if err != nil {
			return namedRow{}, err
		}
		return namedRow{ID: b.ID, Name: b.Name, Slug: b.Slug, Image: b.Image}, nil
	},
	create: func(ctx context.Context, conn *storeapi.Conn, in models.NamedInput) error {
		return conn.CreateBrand(ctx, in)
	},
	update: func(ctx context.Context, conn *storeapi.Conn, id string, in models.NamedInput) error {
		return conn.UpdateBrand(ctx, id, in)
	},
	remove: func(ctx context.Context, conn *storeapi.Conn, id string) error {
		return conn.DeleteBrand(ctx, id)
	},
}

var categoryResource = namedResource{
	path:     "/admin/categories",
	singular: "category",
	plural:   "Categories",
	list: func(ctx context.Context, conn *storeapi.Conn) ([]namedRow, error) {
		cats, err := conn.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]namedRow, len(cats))
		for i, cat := range cats {
			rows[i] = namedRow{ID: cat.ID, Name: cat.Name, Slug: cat.Slug, Image: cat.Image}
		}
		return rows, nil
	},
	get: func(ctx context.Context, conn *storeapi.Conn, id string) (namedRow, error) {
		cat, err := conn.GetCategory(ctx, id)
		if err != nil {
			return namedRow{}, err
		}
		return namedRow{ID: cat.ID, Name: cat.Name, Slug: cat.Slug, Image: cat.Image}, nil
	},
	create: func(ctx context.Context, conn *storeapi.Conn, in models.NamedInput) error {
		return conn.CreateCategory(ctx, in)
	},
	update: func(ctx context.Context, conn *storeapi.Conn, id string, in models.NamedInput) error {
		return conn.UpdateCategory(ctx, id, in)
	},
	remove: func(ctx context.Context, conn *storeapi.Conn, id string) error {
		return conn.DeleteCategory(ctx, id)
	},
}

// BrandRoutes mounts the brand admin pages on g.
func (h *Handler) BrandRoutes(g *gin.RouterGroup) {
	h.namedRoutes(g, brandResource)
}

// CategoryRoutes mounts the category admin pages on g.
func (h *Handler) CategoryRoutes(g *gin.RouterGroup) {
	h.namedRoutes(g, categoryResource)
}

func (h *Handler) namedRoutes(g *gin.RouterGroup, r namedResource) {
	g.GET("", func(c *gin.Context) { h.namedList(c, r) })
	g.GET("/new", func(c *gin.Context) { h.namedForm(c, r, http.StatusOK, namedRow{}, nil) })
	g.POST("", func(c *gin.Context) { h.namedSave(c, r) })
	g.GET("/:id/edit", func(c *gin.Context) {
		row, err := r.get(c.Request.Context(), h.state(c).conn, c.Param("id"))
		if err != nil {
			h.fail(c, err, "Failed to load "+r.singular, r.path)
			return
		}
		row.ID = c.Param("id")
		h.namedForm(c, r, http.StatusOK, row, nil)
	})
	g.POST("/:id", func(c *gin.Context) { h.namedSave(c, r) })
	g.GET("/:id/delete", func(c *gin.Context) {
		id := c.Param("id")
		row, err := r.get(c.Request.Context(), h.state(c).conn, id)
		if err != nil {
			h.fail(c, err, "Failed to load "+r.singular, r.path)
			return
		}
		h.confirmDelete(c, r.singular, row.Name, r.path+"/"+id+"/delete", r.path)
	})
	g.POST("/:id/delete", func(c *gin.Context) {
		if err := r.remove(c.Request.Context(), h.state(c).conn, c.Param("id")); err != nil {
			h.fail(c, err, "Failed to delete "+r.singular, r.path)
			return
		}
		h.done(c, capitalize(r.singular)+" deleted successfully", r.path)
	})
}

func (h *Handler) namedList(c *gin.Context, r namedResource) {
	rows, err := r.list(c.Request.Context(), h.state(c).conn)
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	data := gin.H{
		"title":    r.plural,
		"resource": r.singular,
		"path":     r.path,
		"rows":     rows,
	}
	if err != nil {
		h.logger.Error("namedList - listing", "resource", r.plural, "error", err)
		data["error"] = storeapi.Message(err, "Failed to load "+r.plural)
	}
	h.render(c, http.StatusOK, "admin_named.html", data)
}

func (h *Handler) namedForm(c *gin.Context, r namedResource, status int, row namedRow, extra gin.H) {
	title := "Add " + r.singular
	if row.ID != "" {
		title = "Edit " + r.singular
	}
	data := gin.H{
		"title":    title,
		"resource": r.singular,
		"path":     r.path,
		"row":      row,
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "admin_named_form.html", data)
}

func (h *Handler) namedSave(c *gin.Context, r namedResource) {
	id := c.Param("id")
	var in models.NamedInput
	if err := c.ShouldBind(&in); err != nil {
		h.namedForm(c, r, http.StatusUnprocessableEntity, namedRow{ID: id, Name: in.Name, Slug: in.Slug, Image: in.Image}, gin.H{
			"errors": fieldErrors(err),
		})
		return
	}

	conn := h.state(c).conn
	ctx := c.Request.Context()
	var err error
	msg := capitalize(r.singular) + " created successfully"
	if id == "" {
		err = r.create(ctx, conn, in)
	} else {
		err = r.update(ctx, conn, id, in)
		msg = capitalize(r.singular) + " updated successfully"
	}
	if err != nil {
		if errors.Is(err, storeapi.ErrUnauthorized) {
			h.toLogin(c)
			return
		}
		h.namedForm(c, r, http.StatusOK, namedRow{ID: id, Name: in.Name, Slug: in.Slug, Image: in.Image}, gin.H{
			"error": storeapi.Message(err, "Failed to save "+r.singular),
		})
		return
	}
	h.done(c, msg, r.path)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Orders

// AdminOrders lists every order.
func (h *Handler) AdminOrders(c *gin.Context) {
	orders, _, err := h.state(c).conn.ListOrders(c.Request.Context())
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	data := gin.H{"title": "Orders", "orders": latestOrders(orders, len(orders))}
	if err != nil {
		h.logger.Error("AdminOrders - listing", "error", err)
		data["error"] = storeapi.Message(err, "Failed to load orders")
	}
	h.render(c, http.StatusOK, "admin_orders.html", data)
}

// AdminOrderDetail shows one order. The API has no single-order endpoint,
// so the order is picked from the full list.
func (h *Handler) AdminOrderDetail(c *gin.Context) {
	id := c.Param("id")
	orders, _, err := h.state(c).conn.ListOrders(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to load orders", "/admin/orders")
		return
	}
	for _, o := range orders {
		if o.ID == id || (o.OrderID != 0 && strconv.Itoa(o.OrderID) == id) {
			h.render(c, http.StatusOK, "admin_order_detail.html", gin.H{
				"title": "Order " + o.ShortID(),
				"order": o,
			})
			return
		}
	}
	h.NotFound(c)
}

// Users

// RoleForm is the admin role change payload.
type RoleForm struct {
	Role string `form:"role" binding:"required,oneof=user admin"`
}

// AdminUsers lists every user.
func (h *Handler) AdminUsers(c *gin.Context) {
	users, _, err := h.state(c).conn.ListUsers(c.Request.Context())
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	data := gin.H{"title": "Users", "users": users}
	if err != nil {
		h.logger.Error("AdminUsers - listing", "error", err)
		data["error"] = storeapi.Message(err, "Failed to load users")
	}
	h.render(c, http.StatusOK, "admin_users.html", data)
}

// AdminUpdateUserRole switches a user between user and admin.
func (h *Handler) AdminUpdateUserRole(c *gin.Context) {
	var form RoleForm
	if err := c.ShouldBind(&form); err != nil {
		h.setFlash(c, flashError, "Role must be user or admin")
		h.done(c, "", "/admin/users")
		return
	}
	if err := h.state(c).conn.UpdateUserRole(c.Request.Context(), c.Param("id"), form.Role); err != nil {
		h.fail(c, err, "Failed to update role", "/admin/users")
		return
	}
	h.done(c, "User role updated", "/admin/users")
}

// AdminConfirmDeleteUser asks before deleting a user.
func (h *Handler) AdminConfirmDeleteUser(c *gin.Context) {
	id := c.Param("id")
	users, _, err := h.state(c).conn.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "Failed to load users", "/admin/users")
		return
	}
	for _, u := range users {
		if u.ID == id {
			h.confirmDelete(c, "user", u.Name+" ("+u.Email+")", "/admin/users/"+id+"/delete", "/admin/users")
			return
		}
	}
	h.NotFound(c)
}

// AdminDeleteUser deletes a user.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	if err := h.state(c).conn.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "Failed to delete user", "/admin/users")
		return
	}
	h.done(c, "User deleted successfully", "/admin/users")
}
