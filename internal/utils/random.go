package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// RandomHex returns n random bytes hex encoded (2n characters).
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomHexUpper is RandomHex in upper case.
func RandomHexUpper(n int) (string, error) {
	s, err := RandomHex(n)
	return strings.ToUpper(s), err
}
