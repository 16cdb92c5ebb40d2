package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/jkemta/soutenance-api/utils/crypto"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("password does not match")
)

const (
	// MinPasswordLength is the minimum password length
	MinPasswordLength = 8
)

// HashPassword derives an Argon2id hash of the password with a fresh salt.
// The hex-encoded hash and the raw salt are stored separately on the user.
func HashPassword(password string) (string, []byte, error) {
	if len(password) < MinPasswordLength {
		return "", nil, ErrPasswordTooShort
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return "", nil, err
	}

	hash := crypto.DeriveKey(password, salt)
	return hex.EncodeToString(hash), salt, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func VerifyPassword(hashedPassword string, salt []byte, password string) error {
	stored, err := hex.DecodeString(hashedPassword)
	if err != nil {
		return ErrPasswordMismatch
	}

	candidate := crypto.DeriveKey(password, salt)
	if subtle.ConstantTimeCompare(stored, candidate) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// IsPasswordValid checks if password meets minimum requirements
func IsPasswordValid(password string) bool {
	return len(password) >= MinPasswordLength
}
