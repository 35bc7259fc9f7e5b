package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"storefront/internal/models"
	"storefront/internal/storeapi"
)

const (
	catalogPageSize = 12
	homePageSize    = 20
)

// CatalogQuery is the product listing's filter form.
type CatalogQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Brand    string `form:"brand"`
	Category string `form:"category"`
	Keyword  string `form:"keyword"`
}

// HomePage shows the first products of the catalog.
func (h *Handler) HomePage(c *gin.Context) {
	page, err := h.state(c).conn.ListProducts(c.Request.Context(), storeapi.ProductQuery{Limit: homePageSize})
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	data := gin.H{"title": "Home"}
	if err != nil {
		h.logger.Error("HomePage - listing products", "error", err)
		data["error"] = storeapi.Message(err, "Failed to load products")
	} else {
		data["products"] = page.Products
	}
	h.render(c, http.StatusOK, "home.html", data)
}

// ProductsPage is the filterable, paginated catalog.
func (h *Handler) ProductsPage(c *gin.Context) {
	var q CatalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		q = CatalogQuery{}
	}
	if q.Page == 0 {
		q.Page = 1
	}
	q.Keyword = strings.TrimSpace(q.Keyword)

	conn := h.state(c).conn
	var (
		page       *models.ProductPage
		brands     []models.Brand
		categories []models.Category
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		page, err = conn.ListProducts(ctx, storeapi.ProductQuery{
			Page:     q.Page,
			Limit:    catalogPageSize,
			Brand:    q.Brand,
			Category: q.Category,
			Keyword:  q.Keyword,
		})
		return err
	})
	// Filter options are optional; the listing renders without them.
	g.Go(func() error {
		var err error
		if brands, err = conn.ListBrands(ctx); err != nil {
			h.logger.Warn("ProductsPage - listing brands", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = conn.ListCategories(ctx); err != nil {
			h.logger.Warn("ProductsPage - listing categories", "error", err)
		}
		return nil
	})
	err := g.Wait()
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}

	data := gin.H{
		"title":      "Products",
		"query":      q,
		"brands":     brands,
		"categories": categories,
	}
	if err != nil {
		h.logger.Error("ProductsPage - listing products", "error", err)
		data["error"] = storeapi.Message(err, "Failed to load products")
	} else {
		data["products"] = page.Products
		data["pagination"] = page.Pagination
	}
	h.render(c, http.StatusOK, "products.html", data)
}

// ProductDetails shows one product.
func (h *Handler) ProductDetails(c *gin.Context) {
	product, err := h.state(c).conn.GetProduct(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, storeapi.ErrNotFound):
		h.NotFound(c)
		return
	case errors.Is(err, storeapi.ErrUnauthorized):
		h.toLogin(c)
		return
	}

	data := gin.H{"title": "Product details"}
	if err != nil {
		h.logger.Error("ProductDetails - fetching product", "id", c.Param("id"), "error", err)
		data["error"] = storeapi.Message(err, "Failed to load product")
	} else {
		data["title"] = product.Title
		data["product"] = product
	}
	h.render(c, http.StatusOK, "product_details.html", data)
}

// BrandsPage lists every brand.
func (h *Handler) BrandsPage(c *gin.Context) {
	brands, err := h.state(c).conn.ListBrands(c.Request.Context())
	if errors.Is(err, storeapi.ErrUnauthorized) {
		h.toLogin(c)
		return
	}
	data := gin.H{"title": "Brands", "brands": brands}
	if err != nil {
		h.logger.Error("BrandsPage - listing brands", "error", err)
		data["error"] = storeapi.Message(err, "Failed to load brands")
	}
	h.render(c, http.StatusOK, "brands.html", data)
}

// backTo returns the local path posted in "next", or fallback.
func backTo(c *gin.Context, fallback string) string {
	next := c.PostForm("next")
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	// url.Parse rejects control characters, which browsers strip before
	// resolving a Location header.
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

// URL returns the listing link for page with the current filters.
func (q CatalogQuery) URL(page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if q.Brand != "" {
		v.Set("brand", q.Brand)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	return "/products?" + v.Encode()
}
