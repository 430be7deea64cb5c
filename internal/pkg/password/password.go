package password

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength is the shortest accepted password
	MinLength = 8
	// MaxLength is bcrypt's input limit in bytes
	MaxLength = 72
)

// Cost is the bcrypt cost used by Hash. Tests lower it.
var Cost = 12

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashToken hashes a refresh token with SHA-256 for storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidatePassword checks length bounds
func ValidatePassword(password string) bool {
	return len(password) >= MinLength && len(password) <= MaxLength
}
