package httpapi

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return email != "" && len(email) <= 254 && emailPattern.MatchString(email)
}

func validUsername(username string) bool {
	if len(username) < 3 || len(username) > 32 {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

func validName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return len(trimmed) >= 3 && len(trimmed) <= 64
}

// validPassword enforces the strength floor: at least 7 characters with an
// upper, a lower, and a digit. Signup additionally requires a symbol.
func validPassword(pass string, requireSymbol bool) bool {
	if len(pass) < 7 || len(pass) > 128 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pass {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if requireSymbol && !symbol {
		return false
	}
	return upper && lower && digit
}
