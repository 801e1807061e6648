package coverart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.Add("a", []byte("A"))
	c.Add("b", []byte("B"))

	// touch a so b becomes the oldest
	_, ok := c.Get("a")
	assert.True(t, ok)

	evicted := c.Add("c", []byte("C"))
	assert.True(t, evicted)
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
	assert.Equal(t, []string{"a", "c"}, c.Keys())
}

func TestCacheWithoutPromotion(t *testing.T) {
	c := NewCache(2)
	c.Add("a", []byte("A"))
	c.Add("b", []byte("B"))
	c.Add("c", []byte("C"))

	assert.False(t, c.Contains("a"))
	assert.Equal(t, []string{"b", "c"}, c.Keys())
}

func TestCacheDefaultSize(t *testing.T) {
	c := NewCache(0)
	for i := 0; i < DefaultCacheSize+5; i++ {
		c.Add(string(rune('A'+i)), nil)
	}
	assert.Equal(t, DefaultCacheSize, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}
