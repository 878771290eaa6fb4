package common

import (
	"strings"
	"unicode"
)

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// FormatName keeps the runs of [A-Za-z0-9_] in name and joins them with
// single underscores: "Server SDO Parameter" -> "Server_SDO_Parameter".
func FormatName(name string) string {
	var words []string
	start := -1
	for i := 0; i < len(name); i++ {
		if isWordByte(name[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, name[start:i])
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, name[start:])
	}
	return strings.Join(words, "_")
}

// SanitizeLeadingDigit prefixes names that start with a digit with an
// underscore to keep them valid C identifiers.
func SanitizeLeadingDigit(name string) string {
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		return "_" + name
	}
	return name
}

// Identifier builds a C identifier from free profile text.
func Identifier(name string) string {
	return SanitizeLeadingDigit(FormatName(name))
}

// DefineName replaces every character that is not a letter, digit or
// underscore with an underscore, one for one. Names keep their length and
// case.
func DefineName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
}
