// Package password wraps bcrypt hashing for user credentials.  Each call to
// Hash embeds a fresh random salt in the output, so two hashes of the same
// plaintext never compare equal as strings.
package password

import "golang.org/x/crypto/bcrypt"

// DefaultCost is used when no cost is configured.
const DefaultCost = bcrypt.DefaultCost

// Hash returns a bcrypt hash of plain using the given cost.
func Hash(plain string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash and a plaintext password.  Malformed hashes
// are treated as a mismatch; this never panics or returns an error.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
