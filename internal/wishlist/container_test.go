package wishlist

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/storeapi"
)

type fakeAPI struct {
	ids       []string
	addErr    error
	getErr    error
	getCalls  int
	lastWrite string
}

func (f *fakeAPI) GetWishlist(context.Context) ([]models.Product, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]models.Product, 0, len(f.ids))
	for _, id := range f.ids {
		out = append(out, models.Product{MongoID: id, Title: "item " + id})
	}
	return out, nil
}

func (f *fakeAPI) AddToWishlist(_ context.Context, id string) error {
	f.lastWrite = "add " + id
	if f.addErr != nil {
		return f.addErr
	}
	for _, have := range f.ids {
		if have == id {
			return nil
		}
	}
	f.ids = append(f.ids, id)
	return nil
}

func (f *fakeAPI) RemoveFromWishlist(_ context.Context, id string) error {
	f.lastWrite = "remove " + id
	for i, have := range f.ids {
		if have == id {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			break
		}
	}
	return nil
}

func TestContainer_AddRefetches(t *testing.T) {
	api := &fakeAPI{}
	c := New()

	require.NoError(t, c.Add(context.Background(), api, "p1"))
	assert.Equal(t, 1, api.getCalls)

	snap := c.Snapshot()
	assert.Equal(t, StatusLoaded, snap.Status)
	assert.Equal(t, 1, snap.Count)
	assert.True(t, c.Contains("p1"))
	assert.False(t, c.Contains("p2"))
	assert.False(t, c.Contains(""))
}

func TestContainer_ContainsMatchesEitherID(t *testing.T) {
	c := New()
	c.products = []models.Product{{ID: "a"}, {MongoID: "b"}}

	assert.True(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))
	assert.False(t, c.Contains("c"))
}

func TestContainer_ToggleRemoves(t *testing.T) {
	api := &fakeAPI{ids: []string{"p1"}}
	c := New()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx, api))

	require.NoError(t, c.Toggle(ctx, api, "p1"))
	assert.Equal(t, "remove p1", api.lastWrite)
	assert.Equal(t, StatusEmpty, c.Snapshot().Status)
	assert.Zero(t, c.Snapshot().Count)

	require.NoError(t, c.Toggle(ctx, api, "p1"))
	assert.Equal(t, "add p1", api.lastWrite)
	assert.True(t, c.Contains("p1"))
}

func TestContainer_FailureKeepsList(t *testing.T) {
	api := &fakeAPI{ids: []string{"p1"}}
	c := New()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx, api))

	api.addErr = &storeapi.APIError{Status: http.StatusBadRequest, Message: "Invalid product"}
	require.Error(t, c.Add(ctx, api, "p2"))

	snap := c.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "Invalid product", snap.Err)
	assert.Equal(t, 1, snap.Count)
	assert.True(t, c.Contains("p1"))
}

func TestContainer_RefetchFailureKeepsList(t *testing.T) {
	api := &fakeAPI{ids: []string{"p1"}}
	c := New()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx, api))

	api.getErr = errors.New("connection reset")
	require.Error(t, c.Remove(ctx, api, "p1"))

	snap := c.Snapshot()
	assert.Equal(t, "Failed to remove from wishlist", snap.Err)
	assert.True(t, c.Contains("p1"))
	assert.True(t, c.Loaded())
}
