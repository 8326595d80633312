package auth

import (
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// HashPassword salts and hashes a plaintext password. A cost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", apperrors.NewValidationError("validation failed",
			map[string]any{"password": "must be at most 72 bytes"})
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
