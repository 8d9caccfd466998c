package util

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("S3cret!", 10)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "S3cret!" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword("S3cret!", hash) {
		t.Error("correct password must verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password must not verify")
	}
	if CheckPassword("", hash) {
		t.Error("empty password must not verify")
	}
	if CheckPassword("S3cret!", "") {
		t.Error("empty hash must not verify")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword("", 10); err == nil {
		t.Error("empty password must be rejected")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, _ := HashPassword("same", 10)
	h2, _ := HashPassword("same", 10)
	if h1 == h2 {
		t.Error("same password must produce different hashes (random salt)")
	}
}
