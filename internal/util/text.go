package util

import "strings"

// SanitizeText makes arbitrary file content safe for Postgres text and
// jsonb columns. Legacy sources are full of stray encodings and NUL bytes.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
