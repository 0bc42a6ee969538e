package wiktionary

import (
	"strings"
	"unicode"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// POSLabel turns a part-of-speech heading into its label: whitespace is
// normalised and a trailing sense counter ("Noun 2", "Verb_3") is dropped.
func POSLabel(title string) string {
	label := domain.NormalizeText(strings.ReplaceAll(title, "_", " "))
	trimmed := strings.TrimRightFunc(label, unicode.IsDigit)
	if trimmed == label {
		return label
	}
	if t := strings.TrimSpace(trimmed); t != "" {
		return t
	}
	return label
}

// DeduplicateStrings removes duplicates (case-insensitive) preserving first occurrence.
// Empty strings are dropped.
func DeduplicateStrings(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ss))
	result := make([]string, 0, len(ss))
	for _, s := range ss {
		if s == "" {
			continue
		}
		key := domain.FoldKey(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, s)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
