package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SecureCompare compares two secrets in constant time.
func SecureCompare(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// HashToken returns a hex sha256 digest, used to log device tokens without
// exposing them.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
