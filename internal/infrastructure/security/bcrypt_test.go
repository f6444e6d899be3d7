package security

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/adboard/board-api/internal/core/domain"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "secret123" {
		t.Fatalf("expected password to be hashed")
	}

	ok, err := h.Verify("secret123", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("secret124", hash)
	if err != nil {
		t.Fatalf("mismatch must not be an error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	first, _ := h.Hash("same-password")
	second, _ := h.Hash("same-password")
	if first == second {
		t.Fatalf("expected distinct hashes for repeated calls")
	}
	for _, hash := range []string{first, second} {
		if ok, err := h.Verify("same-password", hash); err != nil || !ok {
			t.Fatalf("salted hash %q should verify: ok=%v err=%v", hash, ok, err)
		}
	}

	other, _ := h.Hash("other-password")
	if other == first || other == second {
		t.Fatalf("different passwords produced equal hashes")
	}
}

func TestBcryptHasher_CorruptHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	ok, err := h.Verify("secret", "not-a-bcrypt-hash")
	if err == nil {
		t.Fatalf("expected integrity error for corrupt hash")
	}
	if ok {
		t.Fatalf("corrupt hash must never verify")
	}
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
	if h := NewBcryptHasher(bcrypt.MaxCost + 1); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
	if h := NewBcryptHasher(bcrypt.MinCost); h.cost != bcrypt.MinCost {
		t.Fatalf("expected min cost, got %d", h.cost)
	}
}

func TestBcryptHasher_PasswordLength(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("72 bytes must hash, got %v", err)
	}
	if _, err := h.Hash(strings.Repeat("a", 73)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("73 bytes: expected ErrInvalidInput, got %v", err)
	}
}
