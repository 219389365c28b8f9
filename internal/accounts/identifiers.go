package accounts

import "strings"

// CompactIBAN upper-cases an IBAN and removes spaces and dashes.
func CompactIBAN(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '-' || r == '\t':
			return -1
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		}
		return r
	}, strings.TrimSpace(s))
}

// IsIBAN reports whether s has the IBAN shape: two letters, two check
// digits and an alphanumeric account part.
func IsIBAN(s string) bool {
	s = CompactIBAN(s)
	if len(s) < 15 || len(s) > 34 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case i < 2:
			if c < 'A' || c > 'Z' {
				return false
			}
		case i < 4:
			if c < '0' || c > '9' {
				return false
			}
		default:
			if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
				return false
			}
		}
	}
	return true
}

// LocalNumber returns the digits of an account identifier with any IBAN
// country and check-digit prefix removed.
func LocalNumber(s string) string {
	if IsIBAN(s) {
		return Digits(CompactIBAN(s)[4:])
	}
	return Digits(s)
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
