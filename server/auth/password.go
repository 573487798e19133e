// Package auth implements password hashing and session token handling.
package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// NormalizeEmail canonicalizes an address the way signup stores it: trimmed
// and lowercased. Every lookup must go through this so the same mailbox
// never creates two accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
