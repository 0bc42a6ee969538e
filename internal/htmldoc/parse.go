// Package htmldoc parses Wiktionary entry pages into a section outline.
//
// Parsing is tolerant: unclosed tags, stray text and odd nesting are
// repaired by the HTML5 tree builder. A document is rejected only when its
// bytes cannot be decoded to text.
package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

var (
	errInvalidUTF8 = errors.New("invalid utf-8 byte sequence")
	errNULByte     = errors.New("NUL byte in markup")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Tree is a parsed document and its section outline.
type Tree struct {
	doc   *goquery.Document
	body  *Section
	lang  string
	title string
}

// Parse reads r fully and builds a Tree. contentType may carry a charset
// parameter; otherwise a BOM or <meta charset> is honoured and UTF-8 is assumed.
//
// Decoding failures are returned as *domain.MalformedMarkupError.
func Parse(r io.Reader, contentType string) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: read: %w", err)
	}
	return ParseBytes(data, contentType)
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte, contentType string) (*Tree, error) {
	text, err := decode(data, contentType)
	if err != nil {
		return nil, &domain.MalformedMarkupError{Err: err}
	}

	root, err := html.Parse(bytes.NewReader(text))
	if err != nil {
		return nil, &domain.MalformedMarkupError{Err: err}
	}

	doc := goquery.NewDocumentFromNode(root)
	t := &Tree{
		doc:   doc,
		body:  buildOutline(root),
		title: domain.NormalizeText(doc.Find("title").First().Text()),
	}
	t.lang, _ = doc.Find("html").First().Attr("lang")
	if t.lang == "" {
		t.lang, _ = doc.Find(".mw-parser-output[lang]").First().Attr("lang")
	}
	return t, nil
}

func decode(data []byte, contentType string) ([]byte, error) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)

	var out []byte
	switch {
	case name == "utf-8", !certain && utf8.Valid(data):
		if !utf8.Valid(data) {
			return nil, errInvalidUTF8
		}
		out = bytes.TrimPrefix(data, utf8BOM)
	default:
		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		out = decoded
	}

	if bytes.IndexByte(out, 0) >= 0 {
		return nil, errNULByte
	}
	return out, nil
}

// Document exposes the goquery view of the parsed document.
func (t *Tree) Document() *goquery.Document { return t.doc }

// Lang returns the declared document language (<html lang>), or "".
func (t *Tree) Lang() string { return t.lang }

// Title returns the normalised <title> text, or "".
func (t *Tree) Title() string { return t.title }

// Body returns the synthetic level-0 section holding content that precedes
// the first heading and all top-level sections.
func (t *Tree) Body() *Section { return t.body }

// Sections returns the top-level sections in document order.
func (t *Tree) Sections() []*Section { return t.body.Children }

// Walk visits every section in document order. Returning false from visit
// skips that section's descendants.
func (t *Tree) Walk(visit func(*Section) bool) {
	for _, s := range t.body.Children {
		s.Walk(visit)
	}
}

// Find returns the outermost sections matching pred; matches nested inside
// a match are not reported.
func (t *Tree) Find(pred func(*Section) bool) []*Section {
	var out []*Section
	for _, s := range t.body.Children {
		out = append(out, s.Find(pred)...)
	}
	return out
}
