package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLen is the shortest password accepted at registration.
	MinPasswordLen = 6
	// MaxPasswordLen is the bcrypt input limit in bytes.
	MaxPasswordLen = 72
)

var ErrPasswordLength = errors.New("password length out of range")

// HashPassword returns a salted bcrypt hash at the default cost.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return "", fmt.Errorf("%w: must be %d to %d bytes", ErrPasswordLength, MinPasswordLen, MaxPasswordLen)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

func CheckPassword(hash, password string) bool {
	if len(password) > MaxPasswordLen {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
