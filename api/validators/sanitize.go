package validators

import "strings"

// SanitizeString trims input and caps it at maxRunes runes when maxRunes > 0.
func SanitizeString(input string, maxRunes int) string {
	trimmed := strings.TrimSpace(input)
	if maxRunes > 0 {
		if runes := []rune(trimmed); len(runes) > maxRunes {
			return string(runes[:maxRunes])
		}
	}
	return trimmed
}
