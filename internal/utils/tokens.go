package utils

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"math/big"
)

// GenerateSecureToken creates a cryptographically secure random token.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

const accessKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateAccessKey creates an 8-character shared secret for gated
// tests, uppercase letters and digits only so it is easy to dictate.
func GenerateAccessKey() (string, error) {
	key := make([]byte, 8)
	max := big.NewInt(int64(len(accessKeyAlphabet)))
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		key[i] = accessKeyAlphabet[n.Int64()]
	}
	return string(key), nil
}
