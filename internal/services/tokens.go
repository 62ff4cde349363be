package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	slugLength      = 10
	slugLetters     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	accessTokenSize = 32
)

// GenerateSlug returns a short URL-safe identifier for a paid link
func GenerateSlug() (string, error) {
	b := make([]byte, slugLength)
	letterCount := big.NewInt(int64(len(slugLetters)))

	for i := range b {
		n, err := rand.Int(rand.Reader, letterCount)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b[i] = slugLetters[n.Int64()]
	}
	return string(b), nil
}

// GenerateAccessToken returns 256 random bits, base64url encoded. Nothing
// about the link, buyer or time goes into it.
func GenerateAccessToken() (string, error) {
	b := make([]byte, accessTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
