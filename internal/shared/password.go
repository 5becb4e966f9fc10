package shared

import "unicode"

// MinPasswordLength is the shortest password the strength policy accepts.
const MinPasswordLength = 8

// IsStrongPassword reports whether password has at least MinPasswordLength
// characters and one character of each class: upper, lower, digit and
// punctuation or symbol. Both the client and the backend enforce it.
func IsStrongPassword(password string) bool {
	if len([]rune(password)) < MinPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}
