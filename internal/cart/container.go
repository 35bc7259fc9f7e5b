// Package cart is a read-through cache of the visitor's server-side cart.
// Every mutation goes to the store API and the local snapshot is replaced
// with the server's response; nothing is edited locally.
package cart

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

// API is the slice of the store API the cart needs.
type API interface {
	GetCart(ctx context.Context) (*models.CartEnvelope, error)
	AddToCart(ctx context.Context, productID string) (*models.CartEnvelope, error)
	UpdateCartItem(ctx context.Context, productID string, count int) (*models.CartEnvelope, error)
	RemoveCartItem(ctx context.Context, productID string) (*models.CartEnvelope, error)
	ClearCart(ctx context.Context) error
}

// Snapshot is what views render. Count is the server-reported item count;
// Total is recomputed from Items.
type Snapshot struct {
	Status Status
	CartID string
	Items  []models.CartItem
	Count  int
	Total  float64
	Err    string
}

// Container holds one visitor's cart.
type Container struct {
	mu       sync.Mutex
	status   Status
	cartID   string
	items    []models.CartItem
	count    int
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

	items := make([]models.CartItem, len(c.items))
	copy(items, c.items)

	status := c.status
	if c.inflight > 0 {
		status = StatusLoading
	}
	return Snapshot{
		Status: status,
		CartID: c.cartID,
		Items:  items,
		Count:  c.count,
		Total:  models.CartTotal(items),
		Err:    c.err,
	}
}

// Loaded reports whether a server response has ever been applied.
func (c *Container) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Load fetches the cart.
func (c *Container) Load(ctx context.Context, api API) error {
	return c.run(ctx, "Failed to load cart", func(ctx context.Context) (*models.CartEnvelope, error) {
		return api.GetCart(ctx)
	})
}

// Add adds one unit of productID.
func (c *Container) Add(ctx context.Context, api API, productID string) error {
	return c.run(ctx, "Failed to add to cart", func(ctx context.Context) (*models.CartEnvelope, error) {
		return api.AddToCart(ctx, productID)
	})
}

// Remove drops productID from the cart.
func (c *Container) Remove(ctx context.Context, api API, productID string) error {
	return c.run(ctx, "Failed to remove from cart", func(ctx context.Context) (*models.CartEnvelope, error) {
		return api.RemoveCartItem(ctx, productID)
	})
}

// SetQuantity sets the count of productID. A count below one removes it.
func (c *Container) SetQuantity(ctx context.Context, api API, productID string, count int) error {
	if count < 1 {
		return c.Remove(ctx, api, productID)
	}
	return c.run(ctx, "Failed to update cart", func(ctx context.Context) (*models.CartEnvelope, error) {
		return api.UpdateCartItem(ctx, productID, count)
	})
}

// Clear empties the cart. The snapshot is emptied only once the server has
// confirmed.
func (c *Container) Clear(ctx context.Context, api API) error {
	c.begin()
	err := api.ClearCart(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		c.fail(storeapi.Message(err, "Failed to clear cart"))
		return err
	}
	c.status = StatusEmpty
	c.cartID = ""
	c.items = nil
	c.count = 0
	c.err = ""
	c.loaded = true
	return nil
}

func (c *Container) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight++
}

// run performs one round trip and replaces the snapshot with its result.
// The lock is not held across the call, so the last response to land wins.
func (c *Container) run(ctx context.Context, fallback string, call func(context.Context) (*models.CartEnvelope, error)) error {
	c.begin()
	env, err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		c.fail(storeapi.Message(err, fallback))
		return err
	}
	c.apply(env)
	return nil
}

func (c *Container) apply(env *models.CartEnvelope) {
	c.cartID = env.Cart.ID
	c.items = env.Cart.Products
	c.count = env.NumOfCartItems
	c.err = ""
	c.loaded = true
	if len(c.items) == 0 {
		c.status = StatusEmpty
		return
	}
	c.status = StatusLoaded
}

// fail records msg and keeps the previous items in place.
func (c *Container) fail(msg string) {
	c.status = StatusError
	c.err = msg
}
