package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims free text from a till (notes, customer names, payment
// references), drops control characters other than newlines and tabs, and
// caps the result at maxLen runes. A maxLen of zero or less means no cap.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(input))

	if maxLen <= 0 {
		return cleaned
	}
	count := 0
	for i := range cleaned {
		if count == maxLen {
			return strings.TrimSpace(cleaned[:i])
		}
		count++
	}
	return cleaned
}
