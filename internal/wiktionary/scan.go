package wiktionary

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// IsCandidate is the cheap first-phase filter. It never builds a tree: it
// checks the headword's script (when a script filter is set) and looks for
// the effective language's names and heading ids as raw substrings.
// Bytes that are not valid UTF-8 are first decoded with the declared
// charset, as the parser would.
//
// It may admit files that later yield nothing, but it does not reject a
// file whose language section Extract would find.
func IsCandidate(doc domain.RawDocument, cfg *FilterConfig) bool {
	if len(cfg.scripts) > 0 {
		if hw := Headword(doc.Path, ""); hw != "" && !cfg.AllowsScript(hw) {
			return false
		}
	}

	data := doc.Data
	if !utf8.Valid(data) {
		decoded, ok := decodeDeclared(data, doc.ContentType)
		if !ok {
			return true
		}
		data = decoded
	}

	raw := string(data)
	if strings.IndexByte(raw, '&') >= 0 {
		raw = html.UnescapeString(raw)
	}
	folded := domain.FoldKey(raw)

	for _, id := range cfg.scanIDs {
		if containsAttrValue(folded, id) {
			return true
		}
	}
	for _, name := range cfg.scanNames {
		if strings.Contains(folded, name) {
			return true
		}
	}

	// Heading text split across inline tags or line breaks only matches
	// once tags are removed and whitespace collapsed.
	text := string(stripTags(data))
	if strings.IndexByte(text, '&') >= 0 {
		text = html.UnescapeString(text)
	}
	text = domain.FoldKey(text)
	for _, name := range cfg.scanNames {
		if strings.Contains(text, name) {
			return true
		}
	}
	return false
}

// decodeDeclared converts data to UTF-8 using the charset from
// contentType, a BOM or a <meta> declaration. It reports false when the
// bytes cannot be decoded.
func decodeDeclared(data []byte, contentType string) ([]byte, bool) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, false
	}
	return out, true
}

// containsAttrValue looks for value as a whole attribute value:
// preceded by a quote, '=' or space and followed by a quote, space, '>',
// '/' or '-' (for lang="en-GB").
func containsAttrValue(haystack, value string) bool {
	if value == "" {
		return false
	}
	for from := 0; from < len(haystack); {
		i := strings.Index(haystack[from:], value)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(value)
		before := start > 0 && strings.IndexByte(`"'= `, haystack[start-1]) >= 0
		after := end == len(haystack) || strings.IndexByte(`"' >/-`, haystack[end]) >= 0
		if before && after {
			return true
		}
		from = start + 1
	}
	return false
}

// stripTags drops everything between '<' and '>'.
func stripTags(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		lt := bytes.IndexByte(data, '<')
		if lt < 0 {
			return append(out, data...)
		}
		out = append(out, data[:lt]...)
		gt := bytes.IndexByte(data[lt:], '>')
		if gt < 0 {
			return out
		}
		data = data[lt+gt+1:]
	}
	return out
}
