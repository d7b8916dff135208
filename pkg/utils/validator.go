package utils

import (
	"regexp"
	"strings"
)

var (
	controlChars   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	unsafeFileName = regexp.MustCompile(`[\\/:*?"<>|]+`)
)

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// SanitizeFileName turns free text into a single path element safe on common filesystems.
// Returns fallback when nothing usable is left.
func SanitizeFileName(name, fallback string) string {
	cleaned := unsafeFileName.ReplaceAllString(SanitizeString(name), "_")
	cleaned = strings.Trim(strings.TrimSpace(cleaned), ".")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
