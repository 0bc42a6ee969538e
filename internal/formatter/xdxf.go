package formatter

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

const (
	xdxfProlog  = `<?xml version="1.0" encoding="UTF-8" ?>` + "\n"
	xdxfDoctype = `<!DOCTYPE xdxf SYSTEM "https://raw.github.com/soshial/xdxf_makedict/master/format_standard/xdxf_strict.dtd">` + "\n"
)

// XDXFFormatter writes a visual-format XDXF document: a fixed header, then
// one <ar> per headword group. Each part of speech is a <def> holding a
// <gr> label and one nested <def> per sense; sub-senses nest inside their
// parent sense.
type XDXFFormatter struct {
	opts Options
}

func (f *XDXFFormatter) Extension() string { return ".xdxf" }

func (f *XDXFFormatter) Format(w io.Writer, entries []domain.Entry, h Header) error {
	sw := newStickyWriter(w)

	sw.str(xdxfProlog)
	sw.str(xdxfDoctype)
	sw.printf(`<xdxf lang_from="%s" lang_to="%s" format="visual">`+"\n", xmlEscape(iso3(h.SourceLang)), xmlEscape(iso3(h.TargetLang)))
	sw.str("<full_name>" + xmlEscape(h.Name) + "</full_name>\n")
	sw.str("<description>Converted from Wiktionary</description>\n")
	sw.str("<abbreviations></abbreviations>\n")
	sw.str("<xdxf_body>\n")

	for _, art := range articles(entries) {
		sw.str("<ar><k>" + xmlEscape(art[0].Headword) + "</k>\n")
		for _, e := range art {
			f.writeEntry(sw, e)
		}
		sw.str("</ar>\n")
	}

	sw.str("</xdxf_body>\n</xdxf>\n")
	return sw.flush()
}

func (f *XDXFFormatter) writeEntry(sw *stickyWriter, e domain.Entry) {
	sw.str("<def>")
	if e.PartOfSpeech != "" {
		sw.str("<gr>" + xmlEscape(e.PartOfSpeech) + "</gr>")
	}

	// open holds the levels of senses whose <def> is still open.
	var open []int
	for _, d := range e.Definitions {
		for len(open) > 0 && open[len(open)-1] >= d.Level {
			sw.str("</def>")
			open = open[:len(open)-1]
		}
		if len(open) == 0 {
			sw.str("\n")
		}
		sw.str("<def>")
		if f.opts.InlineMarkup {
			for _, tag := range d.Tags {
				sw.str("<co>" + xmlEscape(tag) + "</co> ")
			}
			sw.str(xdxfRuns(d.Runs, d.Gloss))
		} else {
			sw.str(xmlEscape(tagPrefix(d.Tags) + d.Gloss))
		}
		open = append(open, d.Level)
	}
	for range open {
		sw.str("</def>")
	}
	if len(e.Definitions) > 0 {
		sw.str("\n")
	}
	for _, ex := range e.Examples {
		sw.str("<ex>" + xmlEscape(ex) + "</ex>\n")
	}
	sw.str("</def>\n")
}

func xdxfRuns(runs []domain.Run, fallback string) string {
	if len(runs) == 0 {
		return xmlEscape(fallback)
	}
	var b bytes.Buffer
	for _, r := range runs {
		text := xmlEscape(r.Text)
		if r.Style.Has(domain.StyleLink) {
			text = "<kref>" + text + "</kref>"
		}
		if r.Style.Has(domain.StyleItalic) {
			text = "<i>" + text + "</i>"
		}
		if r.Style.Has(domain.StyleBold) {
			text = "<b>" + text + "</b>"
		}
		b.WriteString(text)
	}
	return b.String()
}

// xmlEscape escapes reserved characters and replaces characters XML 1.0
// cannot carry.
func xmlEscape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
