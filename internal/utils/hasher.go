package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first n hex characters of Hash(data)
func ShortHash(data []byte, n int) string {
	h := Hash(data)
	if n <= 0 || n > len(h) {
		return h
	}
	return h[:n]
}
