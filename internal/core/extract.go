package core

import "strings"

// ExtractJSON returns the text from the first '{' to the last '}' inclusive.
// Braces are not balanced, so several objects or stray braces inside strings
// come back as one span.  Without such a span the trimmed input is returned
// and decoding it fails downstream.
func ExtractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(raw)
	}
	return raw[start : end+1]
}
