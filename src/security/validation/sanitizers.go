package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrValidationFailed marks request payloads rejected before they reach the engine.
var ErrValidationFailed = errors.New("validation failed")

// MaxLabelLength bounds the free-text label stored with an evaluation.
const MaxLabelLength = 120

// SanitizeForFormulaInjection prepends a single quote if the string starts with a formula character.
// This makes most spreadsheet software treat it as text.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 {
		firstChar := rune(trimmed[0])
		if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' || firstChar == '\t' || firstChar == '\r' {
			return "'" + s
		}
	}
	return s
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// SanitizeLabel cleans a user-supplied scenario label for storage and export.
func SanitizeLabel(s string) string {
	s = strings.TrimSpace(StripUnprintable(s))
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > MaxLabelLength {
		s = string(r[:MaxLabelLength])
	}
	return SanitizeForFormulaInjection(s)
}
