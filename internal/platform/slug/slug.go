package slug

import (
	"strings"
	"unicode"
)

// Make lowercases input and collapses each run of characters that are not
// letters or digits into one hyphen. Letters outside ASCII are kept, so
// "東京大学 過去問" stays readable.
func Make(input string) string {
	var sb strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if sb.Len() == 0 {
		return "untitled"
	}
	return sb.String()
}
