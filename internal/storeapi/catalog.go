package storeapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/models"
)

// ProductQuery filters and pages the product listing. Zero fields are omitted.
type ProductQuery struct {
	Page     int
	Limit    int
	Brand    string
	Category string
	Keyword  string
	Sort     string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Brand != "" {
		v.Set("brand", q.Brand)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// ListProducts returns one page of products.
func (c *Conn) ListProducts(ctx context.Context, q ProductQuery) (*models.ProductPage, error) {
	var products []models.Product
	env, err := c.getData(ctx, "/products", q.values(), &products)
	if err != nil {
		return nil, err
	}
	return &models.ProductPage{
		Products:   products,
		Results:    env.Results,
		Pagination: env.Paging(),
	}, nil
}

// AllProducts walks every page of the listing and returns the whole
// collection. q.Page is ignored; q.Limit sets the batch size.
func (c *Conn) AllProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	var all []models.Product
	for q.Page = 1; ; q.Page++ {
		page, err := c.ListProducts(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Products...)
		if len(page.Products) == 0 || q.Page >= page.Pagination.NumberOfPages {
			return all, nil
		}
	}
}

// GetProduct returns one product.
func (c *Conn) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if _, err := c.getData(ctx, "/products/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct adds a product.
func (c *Conn) CreateProduct(ctx context.Context, in models.ProductInput) error {
	return c.do(ctx, http.MethodPost, "/products", nil, in, nil)
}

// UpdateProduct replaces a product's editable fields.
func (c *Conn) UpdateProduct(ctx context.Context, id string, in models.ProductInput) error {
	return c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), nil, in, nil)
}

// DeleteProduct removes a product.
func (c *Conn) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil)
}

// ListBrands returns every brand.
func (c *Conn) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if _, err := c.getData(ctx, "/brands", nil, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// GetBrand returns one brand.
func (c *Conn) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	var b models.Brand
	if _, err := c.getData(ctx, "/brands/"+url.PathEscape(id), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBrand adds a brand.
func (c *Conn) CreateBrand(ctx context.Context, in models.NamedInput) error {
	return c.do(ctx, http.MethodPost, "/brands", nil, in, nil)
}

// UpdateBrand edits a brand.
func (c *Conn) UpdateBrand(ctx context.Context, id string, in models.NamedInput) error {
	return c.do(ctx, http.MethodPut, "/brands/"+url.PathEscape(id), nil, in, nil)
}

// DeleteBrand removes a brand.
func (c *Conn) DeleteBrand(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/brands/"+url.PathEscape(id), nil, nil, nil)
}

// ListCategories returns every category.
func (c *Conn) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if _, err := c.getData(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory returns one category.
func (c *Conn) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var cat models.Category
	if _, err := c.getData(ctx, "/categories/"+url.PathEscape(id), nil, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory adds a category.
func (c *Conn) CreateCategory(ctx context.Context, in models.NamedInput) error {
	return c.do(ctx, http.MethodPost, "/categories", nil, in, nil)
}

// UpdateCategory edits a category.
func (c *Conn) UpdateCategory(ctx context.Context, id string, in models.NamedInput) error {
	return c.do(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), nil, in, nil)
}

// DeleteCategory removes a category.
func (c *Conn) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, nil)
}
