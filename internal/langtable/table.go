// Package langtable holds the static language lookup data used to recognise
// language sections across Wiktionary editions.
package langtable

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

//go:embed languages.yaml
var defaultData []byte

// Language is one row of the lookup table.
type Language struct {
	Code    string   `yaml:"code"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	IDs     []string `yaml:"ids"`
}

// Names returns the display name followed by its aliases.
func (l Language) Names() []string {
	out := make([]string, 0, 1+len(l.Aliases))
	out = append(out, l.Name)
	return append(out, l.Aliases...)
}

// HeadingIDs returns every id value a heading for this language may carry:
// the code, the capitalised code, the name (with spaces as underscores) and
// any extra ids.
func (l Language) HeadingIDs() []string {
	out := []string{l.Code, strings.ToUpper(l.Code[:1]) + l.Code[1:], l.Name}
	if u := strings.ReplaceAll(l.Name, " ", "_"); u != l.Name {
		out = append(out, u)
	}
	return append(out, l.IDs...)
}

// ISO3 returns the ISO 639-3 code, or the table code when x/text does not know it.
func (l Language) ISO3() string {
	base, err := language.ParseBase(l.Code)
	if err != nil {
		return l.Code
	}
	return base.ISO3()
}

type file struct {
	ExcludedSections []string   `yaml:"excluded_sections"`
	Languages        []Language `yaml:"languages"`
}

// Table maps language codes to their Language rows.
type Table struct {
	languages []Language
	byCode    map[string]int
	excluded  []string
}

// Load parses a YAML table.
func Load(r io.Reader) (*Table, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("langtable: decode: %w", err)
	}

	t := &Table{byCode: make(map[string]int, len(f.Languages))}
	for _, l := range f.Languages {
		l.Code = strings.ToLower(strings.TrimSpace(l.Code))
		l.Name = domain.NormalizeText(l.Name)
		if l.Code == "" || l.Name == "" {
			return nil, fmt.Errorf("langtable: language row needs code and name (code %q)", l.Code)
		}
		if _, dup := t.byCode[l.Code]; dup {
			return nil, fmt.Errorf("langtable: duplicate code %q", l.Code)
		}
		t.byCode[l.Code] = len(t.languages)
		t.languages = append(t.languages, l)
	}
	for _, s := range f.ExcludedSections {
		if s = domain.NormalizeText(s); s != "" {
			t.excluded = append(t.excluded, s)
		}
	}
	return t, nil
}

var loadDefault = sync.OnceValue(func() *Table {
	t, err := Load(bytes.NewReader(defaultData))
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the embedded table.
func Default() *Table { return loadDefault() }

// Lookup finds a language by code (case-insensitive).
func (t *Table) Lookup(code string) (Language, bool) {
	i, ok := t.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Language{}, false
	}
	return t.languages[i], true
}

// Resolve is Lookup that reports unknown codes as *domain.UnsupportedLanguageError.
func (t *Table) Resolve(field, code string) (Language, error) {
	l, ok := t.Lookup(code)
	if !ok {
		return Language{}, &domain.UnsupportedLanguageError{Field: field, Code: code}
	}
	return l, nil
}

// Languages returns every row in table order.
func (t *Table) Languages() []Language {
	out := make([]Language, len(t.languages))
	copy(out, t.languages)
	return out
}

// ExcludedSections returns the default non-definitional section titles.
func (t *Table) ExcludedSections() []string {
	out := make([]string, len(t.excluded))
	copy(out, t.excluded)
	return out
}
