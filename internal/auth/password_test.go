package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "pw1" {
		t.Fatal("password should be hashed")
	}
	if err := VerifyPassword("pw1", hash); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := VerifyPassword("pw2", hash); err == nil {
		t.Fatal("expected mismatch for wrong password")
	}
}
