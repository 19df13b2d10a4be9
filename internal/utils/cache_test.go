package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c, err := NewCache(10)
	require.NoError(t, err)

	c.Set("k", "v", time.Minute)
	assert.Equal(t, "v", c.Get("k"))
	assert.Nil(t, c.Get("missing"))
}

func TestCacheExpiry(t *testing.T) {
	c, err := NewCache(10)
	require.NoError(t, err)

	c.Set("k", "v", -time.Second) // already expired
	assert.Nil(t, c.Get("k"))
}

func TestCacheDelete(t *testing.T) {
	c, err := NewCache(10)
	require.NoError(t, err)

	c.Set("k", "v", time.Minute)
	c.Delete("k")
	assert.Nil(t, c.Get("k"))
}

func TestCacheEvictsBeyondCapacity(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	assert.Nil(t, c.Get("a"), "oldest entry is evicted at capacity")
	assert.Equal(t, 2, c.Get("b"))
	assert.Equal(t, 3, c.Get("c"))
}
