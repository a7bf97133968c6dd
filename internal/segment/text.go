package segment

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var markupPattern = regexp.MustCompile(`<[^>]*>`)

// NormalizeText strips cue markup, applies Unicode NFC, and collapses whitespace.
// Synthesis and the clip cache both key off the normalized form.
func NormalizeText(value string) string {
	value = markupPattern.ReplaceAllString(value, "")
	value = norm.NFC.String(value)
	return strings.Join(strings.Fields(value), " ")
}
