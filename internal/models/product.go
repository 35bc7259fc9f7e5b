package models

import "time"

// Product is a catalog entry as returned by the store API.
type Product struct {
	ID                 string     `json:"id,omitempty"`
	MongoID            string     `json:"_id,omitempty"`
	Title              string     `json:"title"`
	Slug               string     `json:"slug,omitempty"`
	Description        string     `json:"description"`
	Quantity           int        `json:"quantity"`
	Sold               int        `json:"sold,omitempty"`
	Price              float64    `json:"price"`
	PriceAfterDiscount float64    `json:"priceAfterDiscount,omitempty"`
	ImageCover         string     `json:"imageCover"`
	Images             []string   `json:"images,omitempty"`
	Category           *Category  `json:"category,omitempty"`
	Brand              *Brand     `json:"brand,omitempty"`
	Subcategory        []Category `json:"subcategory,omitempty"`
	RatingsAverage     float64    `json:"ratingsAverage,omitempty"`
	RatingsQuantity    int        `json:"ratingsQuantity,omitempty"`
	CreatedAt          time.Time  `json:"createdAt,omitempty"`
	UpdatedAt          time.Time  `json:"updatedAt,omitempty"`
}

// Key returns the identifier the API expects in paths and payloads.
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

// Matches reports whether id refers to this product under either identifier.
func (p Product) Matches(id string) bool {
	return id != "" && (p.ID == id || p.MongoID == id)
}

// Brand is a product brand.
type Brand struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// Category is a product category. Subcategories share the same shape.
type Category struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Image    string `json:"image,omitempty"`
	Category string `json:"category,omitempty"`
}

// ProductInput is the admin create/update payload for a product.
type ProductInput struct {
	Title       string  `json:"title" form:"title" binding:"required"`
	Description string  `json:"description" form:"description" binding:"required"`
	Price       float64 `json:"price" form:"price" binding:"required,gt=0"`
	Quantity    *int    `json:"quantity" form:"quantity" binding:"required,gte=0"`
	Category    string  `json:"category,omitempty" form:"category"`
	Brand       string  `json:"brand,omitempty" form:"brand"`
	ImageCover  string  `json:"imageCover,omitempty" form:"imageCover"`
}

// NamedInput is the admin create/update payload for brands and categories.
type NamedInput struct {
	Name  string `json:"name" form:"name" binding:"required"`
	Slug  string `json:"slug" form:"slug" binding:"required"`
	Image string `json:"image,omitempty" form:"image"`
}
