package utils

import (
	"errors"
	"testing"

	"github.com/yungbote/pixelcraft-backend/internal/apperr"
)

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Dana@Example.COM "); got != "dana@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "dana+tag@example.com", "x.y@sub.example.org"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Fatalf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}
	invalid := []string{"", "plain", "a@b", "a b@c.com", "@example.com"}
	for _, email := range invalid {
		err := ValidateEmail(email)
		if !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Fatalf("ValidateEmail(%q) = %v, want ErrInvalidArgument", email, err)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	if err := ValidatePassword("12345"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("short password should be rejected, got %v", err)
	}
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("password not hashed")
	}
	if err := CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("wrong password accepted")
	}
}
