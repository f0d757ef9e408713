package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the hex SHA-256 digest of the password.
//
// This is a single unsalted pass on purpose: the credential file format
// predates this service and existing records store exactly this digest.
// Known weakness (no salt, fast hash, no rate limiting). Switching to bcrypt
// requires migrating users.json at the same time.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPasswordHash reports whether the password hashes to the stored digest.
func CheckPasswordHash(password, hash string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}
