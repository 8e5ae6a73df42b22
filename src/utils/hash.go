package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomHex returns n random bytes from crypto/rand, hex encoded.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("RandomHex: failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
