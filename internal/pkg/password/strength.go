package password

import "strings"

// MinLength is the minimum password length
const MinLength = 8

// MaxLength is the longest password bcrypt accepts, in bytes
const MaxLength = 72

// SpecialChars is the set of accepted special characters
const SpecialChars = "@$!%*?&"

// Rule describes one strength requirement
type Rule struct {
	Description string
	check       func(string) bool
}

var rules = []Rule{
	{"must be at least 8 characters long", func(p string) bool { return len(p) >= MinLength }},
	{"must contain at least one lowercase letter", func(p string) bool { return strings.IndexFunc(p, isLower) >= 0 }},
	{"must contain at least one uppercase letter", func(p string) bool { return strings.IndexFunc(p, isUpper) >= 0 }},
	{"must contain at least one digit", func(p string) bool { return strings.IndexFunc(p, isDigit) >= 0 }},
	{"must contain at least one special character (" + SpecialChars + ")", func(p string) bool { return strings.ContainsAny(p, SpecialChars) }},
	{"may only contain letters, digits and " + SpecialChars, func(p string) bool { return strings.IndexFunc(p, isDisallowed) < 0 }},
	{"must be at most 72 characters long", func(p string) bool { return len(p) <= MaxLength }},
}

// CheckStrength returns the first rule the password violates, or nil
func CheckStrength(password string) *Rule {
	for i := range rules {
		if !rules[i].check(password) {
			return &rules[i]
		}
	}
	return nil
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isDisallowed(r rune) bool {
	return !isLower(r) && !isUpper(r) && !isDigit(r) && !strings.ContainsRune(SpecialChars, r)
}
