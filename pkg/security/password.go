package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/visionhut/optica-backend/pkg/config"
)

// ErrHashing signals an internal failure inside the hash function. Callers
// must not translate it into "wrong password".
var ErrHashing = errors.New("password hashing failed")

// HashPassword returns a bcrypt hash of the password using the configured
// cost. The cost is clamped to bcrypt's supported range so a misconfigured
// environment degrades to a valid work factor instead of failing open.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), clampCost(cfg.BcryptCost))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
// A mismatch returns (false, nil); anything else is a hashing error.
func VerifyPassword(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrHashing, err)
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}
