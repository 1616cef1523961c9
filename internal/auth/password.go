package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword is returned by ValidateStrength for passwords that do not
// meet the policy: at least 8 characters, one uppercase letter, one digit.
var ErrWeakPassword = errors.New("password must be at least 8 characters and include an uppercase letter and a number")

// Hash returns the bcrypt hash of a plaintext password. bcrypt salts every
// call, so hashing the same input twice yields different digests.
func Hash(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
func Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateStrength checks the password policy applied to every password set
// through self-service change or admin creation.
func ValidateStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var hasUpper, hasDigit bool
	for _, ch := range password {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
