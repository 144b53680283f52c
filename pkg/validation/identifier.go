// Package validation implements the client-facing name and text rules for
// the transformation designer: python identifier shape, reserved words, the
// free-text character set, and row-list uniqueness checks.
package validation

import (
	"regexp"
	"unicode"
)

var identifierPattern = regexp.MustCompile(`^[_a-zA-Z]\w*$`)

// pythonKeywords are rejected as identifiers because exposed io names become
// python variables in the execution engine.
var pythonKeywords = map[string]bool{
	"False": true, "await": true, "else": true, "import": true, "pass": true,
	"None": true, "break": true, "except": true, "in": true, "raise": true,
	"True": true, "class": true, "finally": true, "is": true, "return": true,
	"and": true, "continue": true, "for": true, "lambda": true, "try": true,
	"as": true, "def": true, "from": true, "nonlocal": true, "while": true,
	"assert": true, "del": true, "global": true, "not": true, "with": true,
	"async": true, "elif": true, "if": true, "or": true, "yield": true,
}

// ValidIdentifier reports whether s is a non-empty python identifier that is
// not a reserved word.
func ValidIdentifier(s string) bool {
	if !identifierPattern.MatchString(s) {
		return false
	}

	return !pythonKeywords[s]
}

// ValidOptionalIdentifier accepts the empty string and otherwise applies the
// same rule as ValidIdentifier. Unnamed boundary io stays unexposed rather
// than invalid.
func ValidOptionalIdentifier(s string) bool {
	if s == "" {
		return true
	}

	return ValidIdentifier(s)
}

// allowedPunctuation is the fixed punctuation set permitted in names,
// categories and descriptions beyond unicode letters, numbers, marks and
// connector punctuation.
var allowedPunctuation = map[rune]bool{
	'_': true, ' ': true, '.': true, '\'': true,
	'(': true, ')': true, '/': true, '=': true, '-': true,
}

// ValidFreeText reports whether every rune of s is a unicode letter, number,
// mark, connector punctuation, or one of the explicitly allowed punctuation
// characters. Brackets, colons, semicolons, currency symbols and comparison
// operators are rejected.
func ValidFreeText(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			continue
		}

		if unicode.In(r, unicode.Pc) {
			continue
		}

		if allowedPunctuation[r] {
			continue
		}

		return false
	}

	return true
}
