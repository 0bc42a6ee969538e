// Package script classifies text by writing system using Unicode block ranges.
package script

import "slices"

// Writing system names.
const (
	Latin      = "latin"
	Cyrillic   = "cyrillic"
	Greek      = "greek"
	Chinese    = "chinese"
	Japanese   = "japanese"
	Korean     = "korean"
	Arabic     = "arabic"
	Hebrew     = "hebrew"
	Devanagari = "devanagari"
	Thai       = "thai"
)

type block struct {
	lo, hi rune
}

// A rune belongs to the first script listed that covers it. CJK
// ideographs are Chinese only, so a headword written solely in kanji
// needs "chinese" in the filter.
var table = []struct {
	name   string
	blocks []block
}{
	{Latin, []block{{0x0041, 0x005A}, {0x0061, 0x007A}, {0x00C0, 0x00FF}, {0x0100, 0x017F}, {0x0180, 0x024F}}},
	{Cyrillic, []block{{0x0400, 0x04FF}, {0x0500, 0x052F}}},
	{Greek, []block{{0x0370, 0x03FF}}},
	{Chinese, []block{{0x4E00, 0x9FFF}, {0x3400, 0x4DBF}}},
	{Japanese, []block{{0x3040, 0x309F}, {0x30A0, 0x30FF}}},
	{Korean, []block{{0xAC00, 0xD7AF}, {0x1100, 0x11FF}}},
	{Arabic, []block{{0x0600, 0x06FF}, {0x0750, 0x077F}}},
	{Hebrew, []block{{0x0590, 0x05FF}}},
	{Devanagari, []block{{0x0900, 0x097F}}},
	{Thai, []block{{0x0E00, 0x0E7F}}},
}

// Names returns every known script in table order.
func Names() []string {
	out := make([]string, len(table))
	for i, s := range table {
		out[i] = s.name
	}
	return out
}

// Known reports whether name is a script this package can classify.
func Known(name string) bool {
	return slices.Contains(Names(), name)
}

// Of returns the script owning r, or "" when r falls in no block.
func Of(r rune) string {
	for _, s := range table {
		for _, b := range s.blocks {
			if r >= b.lo && r <= b.hi {
				return s.name
			}
		}
	}
	return ""
}

// Detect returns the scripts present in text, in table order.
func Detect(text string) []string {
	seen := make(map[string]bool)
	for _, r := range text {
		if name := Of(r); name != "" {
			seen[name] = true
		}
	}
	var out []string
	for _, s := range table {
		if seen[s.name] {
			out = append(out, s.name)
		}
	}
	return out
}

// Dominant returns the script with the most runes in text; ties go to the
// script listed first. It returns "" for unclassifiable text.
func Dominant(text string) string {
	counts := make(map[string]int)
	for _, r := range text {
		if name := Of(r); name != "" {
			counts[name]++
		}
	}
	best, bestN := "", 0
	for _, s := range table {
		if n := counts[s.name]; n > bestN {
			best, bestN = s.name, n
		}
	}
	return best
}

// Matches reports whether text passes the allowed filter: true when allowed
// is empty, otherwise true when at least one detected script is allowed.
func Matches(text string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range text {
		if name := Of(r); name != "" && slices.Contains(allowed, name) {
			return true
		}
	}
	return false
}
