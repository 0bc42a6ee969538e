package wiktionary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/internal/langtable"
)

func TestNewFilterConfig_UnknownLanguages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  FilterOptions
		field string
	}{
		{name: "source", opts: FilterOptions{SourceLang: "xx", TargetLang: "en"}, field: "source_lang"},
		{name: "target", opts: FilterOptions{SourceLang: "en", TargetLang: "zz"}, field: "target_lang"},
		{name: "entry", opts: FilterOptions{SourceLang: "en", TargetLang: "en", EntryLang: "qq"}, field: "entry_lang"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFilterConfig(langtable.Default(), tt.opts)
			require.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
			var ule *domain.UnsupportedLanguageError
			require.ErrorAs(t, err, &ule)
			assert.Equal(t, tt.field, ule.Field)
		})
	}
}

func TestFilterConfig_EffectiveLang(t *testing.T) {
	t.Parallel()

	cfg := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "ca"})
	assert.Equal(t, "en", cfg.EffectiveLang().Code)
	_, ok := cfg.EntryLang()
	assert.False(t, ok)
	assert.Equal(t, "ca", cfg.TargetLang().Code)

	cfg = newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en", EntryLang: "RU"})
	assert.Equal(t, "ru", cfg.EffectiveLang().Code)
	assert.Equal(t, "en", cfg.SourceLang().Code)
}

func TestFilterConfig_IsExcluded(t *testing.T) {
	t.Parallel()

	defaults := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en"})
	custom := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en", ExcludedSections: []string{"Derived terms", " ", "derived TERMS"}})

	tests := []struct {
		name  string
		cfg   *FilterConfig
		title string
		want  bool
	}{
		{name: "default exact", cfg: defaults, title: "Translations", want: true},
		{name: "default case-insensitive", cfg: defaults, title: "SEE ALSO", want: true},
		{name: "default substring", cfg: defaults, title: "Translations to be checked", want: true},
		{name: "default catalan", cfg: defaults, title: "Traduccions", want: true},
		{name: "default keeps pos", cfg: defaults, title: "Noun", want: false},
		{name: "empty title", cfg: defaults, title: "", want: false},
		{name: "custom replaces defaults", cfg: custom, title: "Translations", want: false},
		{name: "custom match", cfg: custom, title: "Derived terms", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.IsExcluded(tt.title))
		})
	}
	assert.Equal(t, []string{"derived terms"}, custom.ExcludedSections())
}

func TestFilterConfig_Scripts(t *testing.T) {
	t.Parallel()

	none := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en"})
	assert.Empty(t, none.Scripts())
	assert.True(t, none.AllowsScript("42"))

	cyr := newFilter(t, FilterOptions{SourceLang: "en", TargetLang: "en", Scripts: []string{"Cyrillic", "cyrillic"}})
	assert.Equal(t, []string{"cyrillic"}, cyr.Scripts())
	assert.True(t, cyr.AllowsScript("кот"))
	assert.False(t, cyr.AllowsScript("cat"))
}

func TestHeadword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		title string
		want  string
	}{
		{name: "plain", path: "/in/c/cat", want: "cat"},
		{name: "underscores", path: "/in/i/ice_cream", want: "ice cream"},
		{name: "html extension", path: "/in/c/cat.html", want: "cat"},
		{name: "htm extension", path: "/in/c/Cat.HTM", want: "Cat"},
		{name: "percent-encoded", path: "/in/c/C%2B%2B", want: "C++"},
		{name: "bad escape kept", path: "/in/x/100%", want: "100%"},
		{name: "cyrillic", path: "/in/к/кошка.html", want: "кошка"},
		{name: "title fallback", path: "/in/x/.html", title: " cat ", want: "cat"},
		{name: "nothing", path: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Headword(tt.path, tt.title); got != tt.want {
				t.Errorf("Headword(%q, %q) = %q, want %q", tt.path, tt.title, got, tt.want)
			}
		})
	}
}

func TestPOSLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Noun", "Noun"},
		{"Noun 2", "Noun"},
		{"Verb_3", "Verb"},
		{"  Proper   noun ", "Proper noun"},
		{"1", "1"},
	}
	for _, tt := range tests {
		if got := POSLabel(tt.in); got != tt.want {
			t.Errorf("POSLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeduplicateStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "B"}, DeduplicateStrings([]string{"a", "", "B", "A", "b"}))
	assert.Nil(t, DeduplicateStrings(nil))
	assert.Nil(t, DeduplicateStrings([]string{""}))
}
