package ui

import "strings"

// truncate shortens s to at most maxLen runes, ending in "..." when it
// had to cut. Rune-counted so multi-byte names stay intact.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// titleCase upper-cases the first byte, turning stage names into row labels.
func titleCase(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
