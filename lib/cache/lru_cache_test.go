package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_Evicts(t *testing.T) {
	l := NewLRU[string, []byte](2, nil)

	l.Put("a", []byte("1"))
	l.Put("b", []byte("2"))

	// touch a so b becomes the eviction candidate
	_, ok := l.Get("a")
	assert.True(t, ok)

	l.Put("c", []byte("3"))

	_, ok = l.Get("b")
	assert.False(t, ok)

	v, ok := l.Get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	v, ok = l.Get("c")
	assert.True(t, ok)
	assert.Equal(t, []byte("3"), v)
	assert.Equal(t, 2, l.Len())
}

func TestLRU_Overwrite(t *testing.T) {
	l := NewLRU[string, int](2, nil)

	l.Put("a", 1)
	l.Put("a", 2)

	v, ok := l.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, l.Len())
}

func TestLRU_EvictsByCost(t *testing.T) {
	l := NewLRU[string, []byte](10, func(v []byte) int64 { return int64(len(v)) })

	l.Put("a", make([]byte, 4))
	l.Put("b", make([]byte, 4))
	assert.Equal(t, int64(8), l.Used())

	// a is the least recently used and goes first
	l.Put("c", make([]byte, 4))
	assert.Equal(t, int64(8), l.Used())
	assert.Equal(t, 2, l.Len())

	_, ok := l.Get("a")
	assert.False(t, ok)

	// one entry may push out several smaller ones
	l.Put("d", make([]byte, 9))
	assert.Equal(t, int64(9), l.Used())
	assert.Equal(t, 1, l.Len())
}

func TestLRU_RejectsOversized(t *testing.T) {
	l := NewLRU[string, []byte](10, func(v []byte) int64 { return int64(len(v)) })

	l.Put("a", make([]byte, 4))
	l.Put("big", make([]byte, 11))

	_, ok := l.Get("big")
	assert.False(t, ok)
	assert.Equal(t, int64(4), l.Used())

	// replacing a cached value with an oversized one drops the old value
	l.Put("a", make([]byte, 11))
	_, ok = l.Get("a")
	assert.False(t, ok)
	assert.Zero(t, l.Used())
	assert.Zero(t, l.Len())
}

func TestLRU_ZeroCapacity(t *testing.T) {
	l := NewLRU[string, int](0, nil)

	l.Put("a", 1)

	_, ok := l.Get("a")
	assert.False(t, ok)
}
