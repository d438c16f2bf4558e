// Package sanitizer normalises user input before it is validated or stored.
//
// Helpers are plain func(string) string values so they compose:
//
//	clean := sanitizer.Compose(sanitizer.Trim, sanitizer.NormalizeWhitespace)
//	name := clean("  Netflix\t Premium ") // "Netflix Premium"
package sanitizer
