package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares text for display and comparison:
//   - composes to Unicode NFC
//   - trims leading/trailing whitespace
//   - compresses any run of whitespace (tabs, newlines, NBSP) into one space
//
// Case, diacritics, hyphens, and apostrophes are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteByte(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// FoldKey returns the case-folded form of NormalizeText(text). Two strings
// that differ only by case or Unicode composition share a key.
func FoldKey(text string) string {
	return cases.Fold().String(NormalizeText(text))
}
