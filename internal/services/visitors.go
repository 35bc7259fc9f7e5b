package services

import (
	"log/slog"
	"time"

	"storefront/internal/cache"
	"storefront/internal/cart"
	"storefront/internal/wishlist"
)

// Visitor is the per-token state a signed-in visitor carries between
// requests.
type Visitor struct {
	Cart     *cart.Container
	Wishlist *wishlist.Container
}

// VisitorService keeps one Visitor per bearer token. Entries expire after
// idle, and are dropped immediately when the token is invalidated.
type VisitorService struct {
	visitors *cache.TTL[string, *Visitor]
	logger   *slog.Logger
}

// NewVisitorService returns a registry whose entries live for idle after
// their last use.
func NewVisitorService(idle time.Duration, logger *slog.Logger) *VisitorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisitorService{
		visitors: cache.NewTTL[string, *Visitor](idle),
		logger:   logger,
	}
}

// For returns the containers for token. Anonymous visitors get fresh,
// unregistered containers so nothing is shared between them.
func (vs *VisitorService) For(token string) *Visitor {
	if token == "" {
		return newVisitor()
	}
	return vs.visitors.GetOrCreate(token, func() *Visitor {
		vs.logger.Debug("VisitorService.For - new visitor state")
		return newVisitor()
	})
}

// Drop forgets the containers for token.
func (vs *VisitorService) Drop(token string) {
	if token == "" {
		return
	}
	vs.visitors.Delete(token)
	vs.logger.Debug("VisitorService.Drop - visitor state released")
}

// Len reports the number of live visitors.
func (vs *VisitorService) Len() int {
	return vs.visitors.Len()
}

// Close stops the expiry loop.
func (vs *VisitorService) Close() {
	vs.visitors.Close()
}

func newVisitor() *Visitor {
	return &Visitor{Cart: cart.New(), Wishlist: wishlist.New()}
}
