package catalog

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatBookName upper-cases the first character and lower-cases the rest,
// e.g. "GENESIS" becomes "Genesis". It does not trim its input.
func FormatBookName(input string) (string, error) {
	if input == "" {
		return "", ErrEmptyInput
	}
	// Casers carry state and must not be shared between goroutines.
	upper := cases.Upper(language.Indonesian)
	lower := cases.Lower(language.Indonesian)

	first, size := utf8.DecodeRuneInString(input)
	var b strings.Builder
	b.Grow(len(input))
	b.WriteString(upper.String(string(first)))
	b.WriteString(lower.String(input[size:]))
	return b.String(), nil
}
