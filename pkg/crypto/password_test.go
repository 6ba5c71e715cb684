package crypto

import (
	"errors"
	"testing"
)

func TestCompareSecretPlaintext(t *testing.T) {
	if err := CompareSecret("hunter2", "hunter2"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := CompareSecret("hunter2", "hunter3"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if err := CompareSecret("hunter2", "hunter22"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch on length difference, got %v", err)
	}
}

func TestCompareSecretBcrypt(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CompareSecret(string(hash), "hunter2"); err != nil {
		t.Fatalf("expected bcrypt match, got %v", err)
	}
	if err := CompareSecret(string(hash), "wrong"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}
