package service

import (
	"fmt"
	"strings"
	"unicode"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// PolicyError reports password policy violations as a field-level list so
// the HTTP boundary can surface each one, the way identity-store validation
// detail did in the original API.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	return "password policy: " + strings.Join(e.Violations, ", ")
}

// ValidatePassword checks the password policy and returns one message per
// violated rule.  An empty slice means the password is acceptable.
func ValidatePassword(plain string) []string {
	var violations []string

	if len(plain) < MinPasswordLength {
		violations = append(violations, fmt.Sprintf("Passwords must be at least %d characters.", MinPasswordLength))
	}

	var hasDigit, hasLower, hasUpper, hasSpecial bool
	for _, r := range plain {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			hasSpecial = true
		}
	}
	if !hasDigit {
		violations = append(violations, "Passwords must have at least one digit ('0'-'9').")
	}
	if !hasLower {
		violations = append(violations, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !hasUpper {
		violations = append(violations, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if !hasSpecial {
		violations = append(violations, "Passwords must have at least one non alphanumeric character.")
	}
	return violations
}
