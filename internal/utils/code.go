package utils

import (
	"crypto/rand" // Cryptographic randomness for codes
	"fmt"
	"math/big"
)

// NewVerificationCode returns a random 6-digit numeric code, zero-padded.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000)) // [0, 999999]
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil // Always exactly 6 digits
}

// CDNURL builds the public image URL for a storage id by concatenation,
// e.g. https://cdn.medsupply.example/<id>.
func CDNURL(host, storageID string) string {
	return "https://cdn." + host + "/" + storageID
}
