package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"storefront/internal/cache"
	"storefront/internal/models"
)

// Resolver turns tokens into identities through the store API's
// verification endpoint. Results are cached per token and concurrent
// lookups of one token share a single upstream call.
type Resolver struct {
	cache  *cache.TTL[string, models.Identity]
	group  singleflight.Group
	parser *jwt.Parser
	now    func() time.Time
}

// NewResolver creates a resolver whose identities live for ttl.
func NewResolver(ttl time.Duration) *Resolver {
	return &Resolver{
		cache:  cache.NewTTL[string, models.Identity](ttl),
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

// Close stops the identity cache.
func (r *Resolver) Close() {
	r.cache.Close()
}

// Forget drops the cached identity for token.
func (r *Resolver) Forget(token string) {
	r.cache.Delete(token)
}

// Expired reports whether token is a JWT whose exp claim is in the past.
// Opaque tokens are never considered expired locally.
func (r *Resolver) Expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := r.parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !r.now().Before(exp.Time)
}

// Resolve returns the identity for token, asking v on a cache miss.
func (r *Resolver) Resolve(ctx context.Context, token string, v Verifier) (*models.Identity, error) {
	if id, ok := r.cache.Get(token); ok {
		return &id, nil
	}

	res, err, _ := r.group.Do(token, func() (any, error) {
		if id, ok := r.cache.Get(token); ok {
			return id, nil
		}
		id, err := v.VerifyToken(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Set(token, *id)
		return *id, nil
	})
	if err != nil {
		return nil, fmt.Errorf("verifying token: %w", err)
	}
	id := res.(models.Identity)
	return &id, nil
}
