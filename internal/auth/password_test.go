package auth

import (
	"strings"
	"testing"
)

func TestHash_RandomSalt(t *testing.T) {
	password := "MyPassword123"

	hash1, err := Hash(password, 4)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash1, "$2") {
		t.Errorf("Hash() = %q, want bcrypt format", hash1)
	}

	hash2, err := Hash(password, 4)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash1 == hash2 {
		t.Error("hashing the same password twice produced identical digests, want random salt")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash("", 4); err == nil {
		t.Error("Hash(\"\") error = nil, want error")
	}
}

func TestVerify(t *testing.T) {
	password := "TestPass456"
	hash, err := Hash(password, 4)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !Verify(password, hash) {
		t.Error("Verify() with correct password = false, want true")
	}
	if Verify("WrongPass1", hash) {
		t.Error("Verify() with wrong password = true, want false")
	}
	if Verify("", hash) {
		t.Error("Verify() with empty password = true, want false")
	}
	if Verify(password, "") {
		t.Error("Verify() with empty hash = true, want false")
	}
	if Verify(password, "not-a-bcrypt-hash") {
		t.Error("Verify() with malformed hash = true, want false")
	}
}

func TestValidateStrength_Valid(t *testing.T) {
	testCases := []string{"Password1", "Abcdefg9", "LONGupper123", "A1234567"}

	for _, pwd := range testCases {
		if err := ValidateStrength(pwd); err != nil {
			t.Errorf("ValidateStrength(%q) error = %v, want nil", pwd, err)
		}
	}
}

func TestValidateStrength_Rejects(t *testing.T) {
	testCases := []string{
		"",
		"Ab1",        // too short
		"Abcdefg",    // 7 chars
		"password1",  // no uppercase
		"PASSWORDXX", // no digit
		"12345678",   // no uppercase
	}

	for _, pwd := range testCases {
		if err := ValidateStrength(pwd); err == nil {
			t.Errorf("ValidateStrength(%q) error = nil, want error", pwd)
		}
	}
}
