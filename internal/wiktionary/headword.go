package wiktionary

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

// Headword derives the entry headword from an input file path: the base
// name, percent-decoded when possible, with a trailing .html/.htm removed
// and underscores read as spaces. When that yields nothing, the page title
// is used instead.
func Headword(path, title string) string {
	base := filepath.Base(path)
	if base == "." || base == "/" {
		base = ""
	}
	lower := strings.ToLower(base)
	for _, ext := range []string{".html", ".htm"} {
		if strings.HasSuffix(lower, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}
	if dec, err := url.PathUnescape(base); err == nil {
		base = dec
	}
	base = strings.ReplaceAll(base, "_", " ")

	if hw := domain.NormalizeText(base); hw != "" {
		return hw
	}
	return domain.NormalizeText(title)
}
