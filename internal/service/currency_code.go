package service

import (
	"fmt"
	"strings"
)

// IsValidCurrencyCode checks whether a string is a valid 3-letter currency code.
func IsValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// NormalizeCode trims and upper-cases a currency code, rejecting anything
// that is not three ASCII letters.
func NormalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if !IsValidCurrencyCode(code) {
		return "", fmt.Errorf("%w: currency code %q", ErrInvalidInput, code)
	}
	return strings.ToUpper(code), nil
}
