package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// VerifyAPIKey compares a presented key with the configured bcrypt hash.
// An empty hash disables key access.
func VerifyAPIKey(presented string, hash string) bool {
	presented = strings.TrimSpace(presented)
	hash = strings.TrimSpace(hash)
	if presented == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
}

func HashAPIKey(key string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
