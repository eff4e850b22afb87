// Package textproc holds the text preparation steps of the ingestion
// pipeline: control-character sanitization and boundary-aware chunking.
package textproc

import "strings"

// Sanitize strips control characters the persistence layer cannot store,
// notably NUL. Tabs and line breaks are kept. The result is always equal
// or shorter, and sanitizing twice equals sanitizing once.
func Sanitize(text string) string {
	if text == "" {
		return text
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}
