package crypto

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch indicates the presented secret does not match the configured one.
var ErrMismatch = errors.New("crypto: secret mismatch")

// HashPassword hashes plaintext using bcrypt.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// CompareSecret checks a presented password against the configured dashboard
// secret. Secrets stored as bcrypt hashes (the "$2" prefix) are compared via
// bcrypt; plaintext secrets are compared in constant time.
func CompareSecret(configured, presented string) error {
	if strings.HasPrefix(configured, "$2") {
		if err := bcrypt.CompareHashAndPassword([]byte(configured), []byte(presented)); err != nil {
			return ErrMismatch
		}
		return nil
	}
	if len(configured) != len(presented) || subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) != 1 {
		return ErrMismatch
	}
	return nil
}
