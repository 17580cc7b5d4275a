package auth

import (
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MinPasswordLength is the floor enforced by the strength policy.
const MinPasswordLength = 8

// CheckPasswordStrength is the authoritative server-side gate: at least
// MinPasswordLength characters with an upper case letter, a lower case
// letter, a digit, and a symbol. Pure and stateless so clients can mirror
// it for UX, but handlers always re-run it.
func CheckPasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakCredential
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	if !upper || !lower || !digit || !symbol {
		return ErrWeakCredential
	}

	return nil
}

// StrongPassword adapts the strength policy into an ozzo-validation rule
// for payload Validate() methods.
func StrongPassword() validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		return CheckPasswordStrength(s)
	}
}
