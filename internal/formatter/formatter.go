// Package formatter serialises entries into dictionary interchange formats.
package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/internal/langtable"
)

// Format selectors accepted by New.
const (
	Lingvo = "lingvo"
	XDXF   = "xdxf"
)

// Header describes the dictionary as a whole.
type Header struct {
	Name string
	// SourceLang and TargetLang are table codes ("en", "ca").
	SourceLang string
	TargetLang string
}

// Options tune rendering.
type Options struct {
	// InlineMarkup renders bold/italic/link runs with the format's own
	// markup instead of plain gloss text.
	InlineMarkup bool
}

// Formatter writes a complete dictionary file. Entries are written in the
// order given; zero entries produce a valid, empty dictionary.
type Formatter interface {
	Format(w io.Writer, entries []domain.Entry, h Header) error
	Extension() string
}

// New returns the formatter for format ("lingvo" or "xdxf").
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case Lingvo:
		return &DSL{opts: opts}, nil
	case XDXF:
		return &XDXFFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("formatter: unknown format %q", format)
	}
}

// articles groups consecutive entries that share a headword and came from
// the same source file. Each group is written as one article.
func articles(entries []domain.Entry) [][]domain.Entry {
	var out [][]domain.Entry
	for i := 0; i < len(entries); {
		j := i + 1
		for j < len(entries) && entries[j].Headword == entries[i].Headword && entries[j].Source == entries[i].Source {
			j++
		}
		out = append(out, entries[i:j])
		i = j
	}
	return out
}

// englishName returns the English name of a language code, as Lingvo
// headers expect, falling back to the table's display name.
func englishName(code string) string {
	if tag, err := language.Parse(code); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	if l, ok := langtable.Default().Lookup(code); ok {
		return l.Name
	}
	return code
}

// iso3 returns the upper-case ISO 639-3 code XDXF headers use.
func iso3(code string) string {
	if l, ok := langtable.Default().Lookup(code); ok {
		return strings.ToUpper(l.ISO3())
	}
	return strings.ToUpper(code)
}

// tagPrefix renders tags as a plain "(a, b) " label.
func tagPrefix(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "(" + strings.Join(tags, ", ") + ") "
}

// stickyWriter remembers the first write error so rendering code can stay linear.
type stickyWriter struct {
	w   *bufio.Writer
	err error
}

func newStickyWriter(w io.Writer) *stickyWriter {
	return &stickyWriter{w: bufio.NewWriter(w)}
}

func (s *stickyWriter) str(v string) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.WriteString(v)
}

func (s *stickyWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *stickyWriter) flush() error {
	if s.err != nil {
		return s.err
	}
	return s.w.Flush()
}
