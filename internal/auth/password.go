package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt consumes; anything after it is ignored.
const maxPasswordBytes = 72

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash without truncation.
var ErrPasswordTooLong = errors.New("auth: password exceeds 72 bytes")

// HashPassword returns a salted bcrypt hash of plain.
func HashPassword(plain string, cost int) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches hash. Only a mismatch returns (false, nil).
// Passwords longer than bcrypt's 72-byte input never match.
func CheckPassword(hash, plain string) (bool, error) {
	if len(plain) > maxPasswordBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}
