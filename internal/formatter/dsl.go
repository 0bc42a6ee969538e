package formatter

import (
	"io"
	"strconv"
	"strings"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// DSL writes the Lingvo DSL text format: a #-header, then one article per
// headword group with tab-indented body lines.
type DSL struct {
	opts Options
}

func (f *DSL) Extension() string { return ".dsl" }

// dslEscaper escapes DSL markup characters in body text.
var dslEscaper = strings.NewReplacer(
	`\`, `\\`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
	`~`, `\~`, `@`, `\@`, `#`, `\#`, `^`, `\^`,
)

// dslHeadwordEscaper additionally escapes parentheses, which mark optional
// parts of a DSL headword.
var dslHeadwordEscaper = strings.NewReplacer(
	`\`, `\\`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
	`~`, `\~`, `@`, `\@`, `#`, `\#`, `^`, `\^`, `(`, `\(`, `)`, `\)`,
)

func (f *DSL) Format(w io.Writer, entries []domain.Entry, h Header) error {
	sw := newStickyWriter(w)

	sw.printf("#NAME %q\n", strings.ReplaceAll(h.Name, `"`, `'`))
	sw.printf("#INDEX_LANGUAGE %q\n", englishName(h.SourceLang))
	sw.printf("#CONTENTS_LANGUAGE %q\n", englishName(h.TargetLang))
	sw.str("\n")

	for _, art := range articles(entries) {
		sw.str(dslHeadwordEscaper.Replace(art[0].Headword))
		sw.str("\n")
		for _, e := range art {
			f.writeEntry(sw, e)
		}
		sw.str("\n")
	}
	return sw.flush()
}

func (f *DSL) writeEntry(sw *stickyWriter, e domain.Entry) {
	if e.PartOfSpeech != "" {
		sw.str("\t[m1][p]" + dslEscaper.Replace(e.PartOfSpeech) + "[/p][/m]\n")
	}
	n := 0
	for _, d := range e.Definitions {
		var b strings.Builder
		b.WriteString("\t[m")
		b.WriteString(strconv.Itoa(2 + d.Level))
		b.WriteString("]")
		if d.Level == 0 {
			n++
			b.WriteString(strconv.Itoa(n))
			b.WriteString(". ")
		}
		if f.opts.InlineMarkup {
			for _, tag := range d.Tags {
				b.WriteString("[p]" + dslEscaper.Replace(tag) + "[/p] ")
			}
			b.WriteString(dslRuns(d.Runs, d.Gloss))
		} else {
			b.WriteString(dslEscaper.Replace(tagPrefix(d.Tags) + d.Gloss))
		}
		b.WriteString("[/m]\n")
		sw.str(b.String())
	}
	for _, ex := range e.Examples {
		sw.str("\t[m2][ex]" + dslEscaper.Replace(ex) + "[/ex][/m]\n")
	}
}

func dslRuns(runs []domain.Run, fallback string) string {
	if len(runs) == 0 {
		return dslEscaper.Replace(fallback)
	}
	var b strings.Builder
	for _, r := range runs {
		text := dslEscaper.Replace(r.Text)
		if r.Style.Has(domain.StyleLink) {
			text = "[ref]" + text + "[/ref]"
		}
		if r.Style.Has(domain.StyleItalic) {
			text = "[i]" + text + "[/i]"
		}
		if r.Style.Has(domain.StyleBold) {
			text = "[b]" + text + "[/b]"
		}
		b.WriteString(text)
	}
	return b.String()
}
