package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(nil))
	assert.Len(t, Hash([]byte("slide")), 64)
}

func TestShortHash(t *testing.T) {
	full := Hash([]byte("webp-bytes"))
	assert.Equal(t, full[:12], ShortHash([]byte("webp-bytes"), 12))
	assert.Equal(t, full, ShortHash([]byte("webp-bytes"), 0))
	assert.Equal(t, full, ShortHash([]byte("webp-bytes"), 100))
}
