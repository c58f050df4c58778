package auth

import (
	"strings"
	"testing"
)

// newTestPasswordService returns a PasswordService with bcrypt cost 4.
// Cost 4 is the minimum allowed by the bcrypt library. This makes tests
// run in milliseconds instead of the real cost's ~100ms each.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt hashes always start with $2a$ or $2b$
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt generates a random salt each time, so two hashes for the
	// same password must differ — otherwise rainbow tables would work.
	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt silently truncates at 72 bytes — we reject it explicitly.
	_, err := ps.Hash(strings.Repeat("a", 73))
	if err == nil {
		t.Fatal("Hash() should return an error for passwords longer than 72 bytes")
	}

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash() should accept a 72-byte password, got error: %v", err)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, _ := ps.Hash("the-real-password")

	if err := ps.Verify(hash, "the-wrong-password"); err == nil {
		t.Fatal("Verify() should return an error for a wrong password")
	}
	if err := ps.Verify(hash, ""); err == nil {
		t.Fatal("Verify() should return an error for an empty password")
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	ps := newTestPasswordService()

	if err := ps.Verify("not-a-valid-bcrypt-hash", "password"); err == nil {
		t.Fatal("Verify() should return an error for a garbage hash")
	}
}

func TestVerify_StoredHashFromOtherCost(t *testing.T) {
	// The users document may contain hashes minted at any cost (the
	// original deployment used 10). Verify must honour the cost embedded
	// in the stored hash, not the service's configured cost.
	minter := NewPasswordServiceForTest(6)
	hash, err := minter.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	verifier := newTestPasswordService()
	if err := verifier.Verify(hash, "secret1"); err != nil {
		t.Errorf("Verify() should accept a hash minted at a different cost: %v", err)
	}
}

// =========================================================================
// ROUND-TRIP TEST
// =========================================================================

func TestHashVerify_RoundTrip(t *testing.T) {
	ps := newTestPasswordService()

	cases := []struct {
		name     string
		password string
	}{
		{"simple alphanumeric", "secret1"},
		{"special characters", "p@$$w0rd!#%"},
		{"unicode", "пароль-密码"},
		{"whitespace", "  leading and trailing  "},
		{"empty-ish", " "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := ps.Hash(tc.password)
			if err != nil {
				t.Fatalf("Hash(%q) error = %v", tc.password, err)
			}

			if err := ps.Verify(hash, tc.password); err != nil {
				t.Errorf("Verify() failed for %q: %v", tc.password, err)
			}
		})
	}
}
