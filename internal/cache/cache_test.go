package cache_test

import (
	"testing"
	"time"

	"github.com/delivro/freightbridge/internal/cache"
	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	c := cache.New[int]()

	_, ok := c.Get("transit-YZF-YFB1")
	assert.False(t, ok)

	c.Set("transit-YZF-YFB1", 3, time.Minute)

	got, ok := c.Get("transit-YZF-YFB1")
	assert.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestCache_Expiry(t *testing.T) {
	c := cache.New[string]()

	c.Set("interline-YZF-YEV", "IL-204", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("interline-YZF-YEV")
	assert.False(t, ok, "entry should expire")
	assert.Equal(t, 0, c.Len(), "expired entry is evicted on read")
}

func TestCache_Overwrite(t *testing.T) {
	c := cache.New[int]()

	c.Set("k", 1, time.Minute)
	c.Set("k", 2, time.Minute)

	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}
