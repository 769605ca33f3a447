package perks

import (
	"regexp"
	"strings"
)

var reLineBreak = regexp.MustCompile(`\r\n?|\n`)

// SplitLines trims every line of raw text, drops empty ones and normalizes the
// rest with the profile. Indexes count non-empty lines only.
func SplitLines(text string, p *IssuerProfile) []TextLine {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := reLineBreak.Split(text, -1)
	lines := make([]TextLine, 0, len(parts))
	for _, raw := range parts {
		raw = strings.TrimSpace(strings.ReplaceAll(raw, "\t", "    "))
		if raw == "" {
			continue
		}
		lines = append(lines, TextLine{
			Index: len(lines),
			Raw:   raw,
			Text:  NormalizeLine(raw, p),
		})
	}
	return lines
}
