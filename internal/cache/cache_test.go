package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(10, time.Hour)

	_, ok := c.Get("missing")
	assert.False(t, ok)
	assert.False(t, c.Has("missing"))

	c.Set("a", "1")
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.True(t, c.Has("a"))
	assert.Equal(t, 1, c.Len())

	c.Set("a", "2")
	v, _ = c.Get("a")
	assert.Equal(t, "2", v)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has("a"))
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Touch "a" so "b" becomes the LRU victim.
	c.Get("a")

	c.Set("d", "4")
	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("c"))
	assert.True(t, c.Has("d"))
	assert.Equal(t, 3, c.Len())
}

func TestCacheHasRefreshesRecency(t *testing.T) {
	c := New(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Has("a")
	c.Set("c", "3")

	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"))
}

func TestCacheSetRefreshesRecency(t *testing.T) {
	c := New(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	c.Set("a", "1b")
	c.Set("c", "3")

	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"))
}

func TestCacheTTLExpiry(t *testing.T) {
	now := time.Now()
	c := New(10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	assert.True(t, c.Has("a"))

	// Just under the TTL: still visible.
	now = now.Add(time.Minute - time.Millisecond)
	assert.True(t, c.Has("a"))

	// At the TTL boundary: gone.
	now = now.Add(time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCacheLenDropsExpired(t *testing.T) {
	now := time.Now()
	c := New(10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	now = now.Add(30 * time.Second)
	c.Set("b", "2")

	now = now.Add(45 * time.Second) // "a" is 75s old, "b" is 45s old
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has("b"))
}

func TestCacheLRUIgnoresTTLOrder(t *testing.T) {
	// Capacity eviction picks the least-recently-used entry even when an
	// older-by-insertion entry was touched more recently.
	now := time.Now()
	c := New(2, time.Hour)
	c.now = func() time.Time { return now }

	c.Set("old", "1")
	now = now.Add(time.Second)
	c.Set("new", "2")
	c.Get("old")

	c.Set("extra", "3")
	assert.True(t, c.Has("old"))
	assert.False(t, c.Has("new"))
}

func TestCacheSetReplacementResetsAge(t *testing.T) {
	now := time.Now()
	c := New(10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	now = now.Add(45 * time.Second)
	c.Set("a", "2")
	now = now.Add(30 * time.Second)

	// 75s since first insert, 30s since replacement.
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	c := New(10, 0)
	c.now = func() time.Time { return now }

	c.Set("a", "1")
	now = now.Add(1000 * time.Hour)
	assert.True(t, c.Has("a"))
}
