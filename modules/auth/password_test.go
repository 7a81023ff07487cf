package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasherWithCost(bcrypt.MinCost)

	hash, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !h.Verify("correct-horse", hash) {
		t.Error("Verify() rejected the right password")
	}
	if h.Verify("battery-staple", hash) {
		t.Error("Verify() accepted the wrong password")
	}

	again, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatal(err)
	}
	if again == hash {
		t.Error("hashes are not salted")
	}
}

func TestDefaultCost(t *testing.T) {
	if NewPasswordHasher().cost != 12 {
		t.Errorf("default cost = %d, want 12", NewPasswordHasher().cost)
	}
}
