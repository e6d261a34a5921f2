package util

import "strings"

// SanitizeText strips NUL bytes and invalid UTF-8 sequences from extracted
// document text before it is chunked or written to storage.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
