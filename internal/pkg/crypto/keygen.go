// Package crypto provides credential generation and password hashing.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenKeyBytes yields a 40 character hex key.
const tokenKeyBytes = 20

// GenerateTokenKey generates a random 40-character lowercase hex token key.
func GenerateTokenKey() (string, error) {
	key := make([]byte, tokenKeyBytes)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
