package service

import (
	"strings"
	"unicode"

	dErrors "onboard/pkg/domain-errors"
)

const passwordSymbols = "!@#$%^&*()-_=+[]{};:,.<>?/|~"

// CheckPasswordStrength enforces the finalize-time password rule: at least 8
// characters with one lowercase letter, one uppercase letter, one digit and
// one symbol from the accepted punctuation set.
func CheckPasswordStrength(password string) error {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if len(password) < 8 || !lower || !upper || !digit || !symbol {
		return dErrors.New(dErrors.CodeWeakPassword,
			"password must be at least 8 characters with lowercase, uppercase, digit and symbol")
	}
	return nil
}
