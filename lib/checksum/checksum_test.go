package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	got := ContentHash([]byte("hello.txt\nhi"))
	assert.Len(t, got, 64)
	assert.Equal(t, got, ContentHash([]byte("hello.txt\nhi")))
	assert.NotEqual(t, got, ContentHash([]byte("other.txt\nhi")))

	// sha256 of the empty input is well known.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(nil))
}

func TestContentHash_Known(t *testing.T) {
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", ContentHash([]byte("abc")))
}
