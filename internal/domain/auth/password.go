package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrWeakPassword wraps every strength failure so callers can map the whole
// family to one response.
var ErrWeakPassword = errors.New("password too weak")

// ValidatePasswordStrength enforces the minimum password rules applied on
// create, change and reset flows.
func ValidatePasswordStrength(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	var missing []string
	if len(password) < 8 {
		missing = append(missing, "at least 8 characters")
	}
	if !upper {
		missing = append(missing, "one uppercase")
	}
	if !lower {
		missing = append(missing, "one lowercase")
	}
	if !digit {
		missing = append(missing, "one digit")
	}
	if !special {
		missing = append(missing, "one special character")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: needs %s", ErrWeakPassword, strings.Join(missing, ", "))
	}
	return nil
}
