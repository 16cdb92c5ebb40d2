package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, salt, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "" || len(salt) == 0 {
		t.Fatal("empty hash or salt")
	}

	if err := VerifyPassword(hash, salt, "correct-horse-battery"); err != nil {
		t.Errorf("VerifyPassword with correct password: %v", err)
	}

	if err := VerifyPassword(hash, salt, "wrong-password!"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("VerifyPassword with wrong password = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPasswordFreshSalt(t *testing.T) {
	hash1, salt1, err := HashPassword("same-password-123")
	if err != nil {
		t.Fatal(err)
	}
	hash2, salt2, err := HashPassword("same-password-123")
	if err != nil {
		t.Fatal(err)
	}

	if string(salt1) == string(salt2) {
		t.Error("two hashes reused the same salt")
	}
	if hash1 == hash2 {
		t.Error("same hash for different salts")
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, _, err := HashPassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("HashPassword(short) = %v, want ErrPasswordTooShort", err)
	}
}

func TestIsPasswordValid(t *testing.T) {
	if IsPasswordValid("1234567") {
		t.Error("7-char password should be invalid")
	}
	if !IsPasswordValid("12345678") {
		t.Error("8-char password should be valid")
	}
}
