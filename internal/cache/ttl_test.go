package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTL_SetAndGet(t *testing.T) {
	c := NewTTL[string, int](5 * time.Minute)
	defer c.Close()

	c.Set("a", 1)

	got, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, got)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestTTL_Expiration(t *testing.T) {
	c := NewTTL[string, string](time.Minute)
	defer c.Close()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("k", "v")

	now = now.Add(30 * time.Second)
	_, found := c.Get("k")
	assert.True(t, found)

	now = now.Add(31 * time.Second)
	_, found = c.Get("k")
	assert.False(t, found)

	c.cleanup()
	assert.Equal(t, 0, c.Len())
}

func TestTTL_GetOrCreate(t *testing.T) {
	c := NewTTL[string, *int](time.Minute)
	defer c.Close()

	calls := 0
	create := func() *int {
		calls++
		v := calls
		return &v
	}

	first := c.GetOrCreate("k", create)
	second := c.GetOrCreate("k", create)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	c.Delete("k")
	third := c.GetOrCreate("k", create)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, calls)
}

func TestTTL_ConcurrentAccess(t *testing.T) {
	c := NewTTL[int, int](time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set(i%5, i)
			c.Get(i % 5)
			c.GetOrCreate(i%7, func() int { return i })
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 7)
}
