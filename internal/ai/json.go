package ai

import (
	"strings"
	"unicode"
)

const fence = "```"

// ExtractJSON strips a markdown code fence, with or without a language tag,
// from an oracle answer. Unfenced input is only trimmed.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, fence) {
		return raw
	}

	raw = strings.TrimPrefix(raw, fence)
	raw = strings.TrimLeftFunc(raw, unicode.IsLetter)

	if idx := strings.LastIndex(raw, fence); idx != -1 {
		raw = raw[:idx]
	}

	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
