// Package userutil normalizes username-like values for embedding in kernel
// object names (named pipes, global mutexes).
package userutil

import "strings"

const fallbackName = "unknown"

// SanitizeUsername maps a raw username to the character set allowed in pipe
// and mutex names. Runs of disallowed characters collapse to a single
// underscore; blank input yields a stable placeholder.
func SanitizeUsername(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallbackName
	}

	var b strings.Builder
	b.Grow(len(value))
	pendingGap := false
	for _, r := range value {
		if isNameRune(r) {
			if pendingGap {
				b.WriteByte('_')
				pendingGap = false
			}
			b.WriteRune(r)
			continue
		}
		pendingGap = true
	}
	if pendingGap {
		b.WriteByte('_')
	}
	return b.String()
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}
