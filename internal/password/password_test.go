package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := Hash("Abc123!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !Verify(h, "Abc123!") {
		t.Fatalf("expected hash to verify against original plaintext")
	}
	if Verify(h, "abc123!") {
		t.Fatalf("expected different plaintext to fail verification")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	t.Parallel()

	h1, err := Hash("Abc123!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := Hash("Abc123!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
	if !Verify(h1, "Abc123!") || !Verify(h2, "Abc123!") {
		t.Fatalf("both hashes must verify against the plaintext")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	if Verify("not-a-bcrypt-hash", "whatever") {
		t.Fatalf("malformed hash must not verify")
	}
	if Verify("", "whatever") {
		t.Fatalf("empty hash must not verify")
	}
}

func TestHash_ZeroCostFallsBackToDefault(t *testing.T) {
	t.Parallel()

	h, err := Hash("Abc123!", 0)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(h))
	if err != nil {
		t.Fatalf("Cost error: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("cost mismatch: got %d want %d", cost, bcrypt.DefaultCost)
	}
}
