package wiktionary

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

func TestIsCandidate(t *testing.T) {
	t.Parallel()

	en := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en"})
	ca := newFilter(t, FilterOptions{SourceLang: "ca", TargetLang: "ca"})
	ru := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en", EntryLang: "ru"})
	cyr := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en", EntryLang: "ru", Scripts: []string{"cyrillic"}})

	tests := []struct {
		name string
		cfg  *FilterConfig
		path string
		data string
		want bool
	}{
		{name: "heading text", cfg: en, path: "a/cat", data: "<h2>English</h2>", want: true},
		{name: "case-insensitive", cfg: en, path: "a/cat", data: "<h2>ENGLISH</h2>", want: true},
		{name: "heading id only", cfg: en, path: "a/cat", data: `<h2 id="En">Other</h2>`, want: true},
		{name: "unrelated page", cfg: ca, path: "a/cat", data: `<html lang="en"><h2 id="English">English</h2></html>`, want: false},
		{name: "entity-encoded name", cfg: ca, path: "g/gat", data: "<h2>Catal&agrave;</h2>", want: true},
		{name: "numeric entity", cfg: ca, path: "g/gat", data: "<h2>Catal&#224;</h2>", want: true},
		{name: "decomposed name", cfg: ca, path: "g/gat", data: "<h2>Catala\u0300</h2>", want: true},
		{name: "name split by tags", cfg: en, path: "a/cat", data: "<h2>Eng<span></span>lish</h2>", want: true},
		{name: "name across line breaks", cfg: en, path: "a/cat", data: "<h2>\n  English\n</h2>", want: true},
		{name: "declared document language", cfg: ca, path: "c/casa", data: `<html lang="ca"><h3>Nom</h3></html>`, want: true},
		{name: "regional document language", cfg: en, path: "c/colour", data: `<html lang="en-GB"><h3>Noun</h3></html>`, want: true},
		{name: "entry language absent", cfg: ru, path: "a/cat", data: "<h2>English</h2><h2>French</h2>", want: false},
		{name: "script filter rejects by path", cfg: cyr, path: "k/koshka.html", data: "<h2>Russian</h2>", want: false},
		{name: "script filter admits by path", cfg: cyr, path: "k/кошка.html", data: "<h2>Russian</h2>", want: true},
		{name: "empty document", cfg: en, path: "e/empty", data: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := domain.RawDocument{Path: tt.path, Data: []byte(tt.data)}
			assert.Equal(t, tt.want, IsCandidate(doc, tt.cfg))
		})
	}
}

// A file Extract finds entries in must always pass IsCandidate.
func TestIsCandidate_NoFalseNegatives(t *testing.T) {
	t.Parallel()

	configs := []FilterOptions{
		{SourceLang: "en", TargetLang: "en"},
		{SourceLang: "en", TargetLang: "en", EntryLang: "ru"},
		{SourceLang: "en", TargetLang: "en", EntryLang: "fr"},
		{SourceLang: "ca", TargetLang: "ca"},
		{SourceLang: "ca", TargetLang: "ca", EntryLang: "oc"},
		{SourceLang: "ru", TargetLang: "ru"},
	}
	fixtures := []string{"cat.html", "run.html", "gat.html", "koshka.html", "monolingual.html", "kot.html"}

	for _, opts := range configs {
		cfg := newFilter(t, opts)
		for _, name := range fixtures {
			doc := readFixture(t, name)
			entries, err := ExtractDocument(doc, cfg)
			assert.NoError(t, err)
			if len(entries) > 0 {
				assert.True(t, IsCandidate(doc, cfg), "%s rejected for %+v", name, opts)
			}
		}
	}
}

func TestIsCandidate_DeclaredCharset(t *testing.T) {
	t.Parallel()

	ru := newFilter(t, FilterOptions{SourceLang: "ru", TargetLang: "ru"})
	en := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en"})
	doc := readFixture(t, "kot.html")
	require.False(t, utf8.Valid(doc.Data), "fixture must be windows-1251 encoded")

	entries, err := ExtractDocument(doc, ru)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Существительное", entries[0].PartOfSpeech)

	assert.True(t, IsCandidate(doc, ru))
	assert.False(t, IsCandidate(doc, en))

	latin1 := []byte("<h2>Catal\xe0</h2>")
	ca := newFilter(t, FilterOptions{SourceLang: "ca", TargetLang: "ca"})
	assert.True(t, IsCandidate(domain.RawDocument{Path: "g/gat", Data: latin1, ContentType: "text/html; charset=iso-8859-1"}, ca))
}

func TestContainsAttrValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		haystack string
		value    string
		want     bool
	}{
		{`<h2 id="en">`, "en", true},
		{`<h2 id='en'>`, "en", true},
		{`<h2 id=en>`, "en", true},
		{`<h2 id= "en" >`, "en", true},
		{`<p>often</p>`, "en", false},
		{`<h2 id="english">`, "en", false},
		{`lang="en-gb"`, "en", true},
		{`x`, "", false},
	}
	for _, tt := range tests {
		if got := containsAttrValue(tt.haystack, tt.value); got != tt.want {
			t.Errorf("containsAttrValue(%q, %q) = %v, want %v", tt.haystack, tt.value, got, tt.want)
		}
	}
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "English text", string(stripTags([]byte(`<h2 id="x">Eng<b>lish</b></h2> text`))))
	assert.Equal(t, "open ", string(stripTags([]byte(`open <unterminated`))))
}
