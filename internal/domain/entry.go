package domain

import "strings"

// Style is a bit set of inline presentation attributes kept from the source markup.
type Style uint8

const (
	StyleBold Style = 1 << iota
	StyleItalic
	StyleLink
)

// Has reports whether every bit of f is set in s.
func (s Style) Has(f Style) bool { return s&f == f }

// Run is a piece of gloss text sharing one Style.
type Run struct {
	Text  string
	Style Style
}

// Definition is one sense of an Entry.
type Definition struct {
	// Gloss is the visible text of the sense with all markup removed.
	Gloss string
	// Runs is the same text split by inline style, for formats that keep
	// bold/italic/link markup.
	Runs []Run
	// Level is 0 for a top-level sense, 1 for a sub-sense and so on.
	Level int
	Tags  []string
}

// Entry is one headword's senses for a given part of speech, the unit of output.
//
// Entries are plain values: nothing in them references the parsed document.
type Entry struct {
	Headword     string
	SourceLang   string
	TargetLang   string
	PartOfSpeech string
	Definitions  []Definition
	Examples     []string
	// Script is the dominant writing system of the headword, or "" when unknown.
	Script string
	// Source is the input file the entry was extracted from.
	Source string
}

// Valid reports whether the entry may be emitted.
func (e *Entry) Valid() bool {
	return strings.TrimSpace(e.Headword) != "" && len(e.Definitions) > 0
}

// PlainRuns returns runs for text with no styling.
func PlainRuns(text string) []Run {
	if text == "" {
		return nil
	}
	return []Run{{Text: text}}
}

// RawDocument is one input file as read from disk. It is parsed once and
// then discarded.
type RawDocument struct {
	Path string
	Data []byte
	// ContentType may carry a charset parameter; empty means UTF-8 unless
	// the markup declares otherwise.
	ContentType string
}
