package security

import (
	"testing"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(10)
	password := []byte("correct horse battery")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if !h.Verify(hash, password) {
		t.Fatal("Verify should accept the original password")
	}
}

func TestHasher_VerifyWrongPassword(t *testing.T) {
	h := NewHasher(10)
	hash, _ := h.Hash([]byte("correct horse battery"))
	if h.Verify(hash, []byte("wrong")) {
		t.Fatal("Verify should reject a wrong password")
	}
}

func TestHasher_VerifyGarbageHash(t *testing.T) {
	h := NewHasher(10)
	if h.Verify("not-a-bcrypt-hash", []byte("anything")) {
		t.Fatal("Verify should reject an invalid hash")
	}
}

func TestHasher_CostClamped(t *testing.T) {
	h := NewHasher(12)
	if h.Cost != 12 {
		t.Errorf("Cost want 12, got %d", h.Cost)
	}
	h0 := NewHasher(0)
	if h0.Cost < 4 {
		t.Errorf("zero cost should be clamped to at least MinCost, got %d", h0.Cost)
	}
	h99 := NewHasher(99)
	if h99.Cost > 31 {
		t.Errorf("oversized cost should be clamped to MaxCost, got %d", h99.Cost)
	}
}
