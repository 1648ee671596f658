package domain

import "unicode"

const minPasswordLength = 8

// ValidatePassword enforces the platform password policy: at least eight
// characters and not entirely numeric.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return ErrWeakPassword
	}
	return nil
}
