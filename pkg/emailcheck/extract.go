package emailcheck

import (
	"regexp"
	"strings"
)

// addressPattern matches email-shaped substrings inside arbitrary text.
// It is the extraction-grade counterpart of fullAddressPattern.
var addressPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Extract scans text for email-shaped substrings and returns them
// normalized to lower case, deduplicated by normalized value with
// first-occurrence order preserved. Text with no candidates yields an
// empty slice.
func Extract(text string) []string {
	matches := addressPattern.FindAllString(text, -1)

	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		addr := strings.ToLower(m)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	return out
}
