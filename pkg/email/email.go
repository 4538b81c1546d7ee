package email

import (
	"strings"
	"unicode"
)

// Valid reports whether the address has the minimal shape worth handing to a
// mail relay: non-empty local part, one "@", non-empty domain with a dot.
func Valid(address string) bool {
	at := strings.IndexByte(address, '@')
	if at <= 0 || at == len(address)-1 {
		return false
	}
	domain := address[at+1:]
	if strings.IndexByte(domain, '@') != -1 {
		return false
	}
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// Normalize lower-cases and trims an address for lookups. The stored profile
// email is always the normalized form.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// DeriveNameFromEmail produces a display name from the local part of an
// address. Used as a notification fallback when a record carries no name.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "Student", "Student"
	}

	first := capitalize(parts[0])
	last := "Student"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
