package cachemem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := New[string](0)
	c.now = func() time.Time { return now }

	c.Put("a", "1", time.Second)
	c.Put("b", "2", 0)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	v, ok = c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestCacheBounded(t *testing.T) {
	c := New[int](2)
	c.Put("a", 1, 0)
	c.Put("b", 2, 0)
	c.Put("c", 3, 0)
	assert.LessOrEqual(t, c.Len(), 2)
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestNilCache(t *testing.T) {
	var c *Cache[int]
	c.Put("a", 1, 0)
	_, ok := c.Get("a")
	assert.False(t, ok)
}
