// Package wishlist caches the visitor's server-side wishlist.
package wishlist

import (
	"context"
	"sync"

	"storefront/internal/models"
	"storefront/internal/storeapi"
)

// Status is the container state.
type Status string

// Container states.
const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// API is the slice of the store API the wishlist needs.
type API interface {
	GetWishlist(ctx context.Context) ([]models.Product, error)
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
}

// Snapshot is what views render.
type Snapshot struct {
	Status   Status
	Products []models.Product
	Count    int
	Err      string
}

// Container holds one visitor's wishlist.
type Container struct {
	mu       sync.Mutex
	status   Status
	products []models.Product
	err      string
	inflight int
	loaded   bool
}

// New returns an empty container.
func New() *Container {
	return &Container{status: StatusEmpty}
}

// Snapshot returns a copy of the current state.
func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	products := make([]models.Product, len(c.products))
	copy(products, c.products)

	status := c.status
	if c.inflight > 0 {
		status = StatusLoading
	}
	return Snapshot{Status: status, Products: products, Count: len(products), Err: c.err}
}

// Loaded reports whether a server response has ever been applied.
func (c *Container) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Contains reports whether productID is in the cached list, matching either
// the id or the _id of each product.
func (c *Container) Contains(productID string) bool {
	if productID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.Matches(productID) {
			return true
		}
	}
	return false
}

// Load fetches the wishlist.
func (c *Container) Load(ctx context.Context, api API) error {
	return c.run(ctx, "Failed to load wishlist", func(context.Context) error { return nil }, api)
}

// Add adds productID and refreshes the list. The add endpoint answers with
// ids only, so the full list is fetched afterwards.
func (c *Container) Add(ctx context.Context, api API, productID string) error {
	return c.run(ctx, "Failed to add to wishlist", func(ctx context.Context) error {
		return api.AddToWishlist(ctx, productID)
	}, api)
}

// Remove drops productID and refreshes the list.
func (c *Container) Remove(ctx context.Context, api API, productID string) error {
	return c.run(ctx, "Failed to remove from wishlist", func(ctx context.Context) error {
		return api.RemoveFromWishlist(ctx, productID)
	}, api)
}

// Toggle adds productID when absent and removes it otherwise.
func (c *Container) Toggle(ctx context.Context, api API, productID string) error {
	if c.Contains(productID) {
		return c.Remove(ctx, api, productID)
	}
	return c.Add(ctx, api, productID)
}

func (c *Container) run(ctx context.Context, fallback string, mutate func(context.Context) error, api API) error {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	products, err := func() ([]models.Product, error) {
		if err := mutate(ctx); err != nil {
			return nil, err
		}
		return api.GetWishlist(ctx)
	}()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		c.status = StatusError
		c.err = storeapi.Message(err, fallback)
		return err
	}
	c.products = products
	c.err = ""
	c.loaded = true
	if len(products) == 0 {
		c.status = StatusEmpty
	} else {
		c.status = StatusLoaded
	}
	return nil
}
