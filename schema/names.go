package schema

import (
	"strings"
	"unicode"
)

// ============================================================================
// STRING UTILITIES
// ============================================================================

// ToKey converts a header into a column key.
// "Payload Mass (kg)" → "payload_mass_kg", "boosterVersion" → "booster_version".
func ToKey(s string) string {
	var b strings.Builder
	prev := rune(0)
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// camelCase boundary
			if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				pendingSep = true
			}
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
		prev = r
	}
	return b.String()
}

// toDisplayName cleans a header for human display.
// "booster_version" → "Booster Version", "Launch Site" → "Launch Site"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
