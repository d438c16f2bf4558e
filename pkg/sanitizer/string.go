package sanitizer

import "strings"

func Trim(s string) string {
	return strings.TrimSpace(s)
}

func ToLower(s string) string {
	return strings.ToLower(s)
}

// NormalizeWhitespace collapses runs of whitespace into one space and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// RemoveControlChars drops ASCII control characters except tab and newlines.
func RemoveControlChars(s string) string {
	return controlRegex.ReplaceAllString(s, "")
}

// Name cleans a display name: control characters removed, whitespace collapsed.
func Name(s string) string {
	return Apply(s, RemoveControlChars, NormalizeWhitespace)
}
