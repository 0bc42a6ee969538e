// Package wiktionary turns parsed Wiktionary pages into dictionary entries.
package wiktionary

import (
	"slices"
	"strings"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/internal/langtable"
	"github.com/omfmartin/pocket-book-dictionary/internal/script"
)

// FilterOptions are the raw inputs to NewFilterConfig.
type FilterOptions struct {
	SourceLang string
	TargetLang string
	// EntryLang, when set, selects that language's sections instead of
	// SourceLang's (e.g. Russian entries in the English edition).
	EntryLang string
	// ExcludedSections replaces the table defaults when non-empty.
	ExcludedSections []string
	// Scripts is the set of admitted writing systems; empty admits all.
	Scripts []string
}

// FilterConfig is the immutable per-run extraction filter. It is safe for
// concurrent use.
type FilterConfig struct {
	table    *langtable.Table
	source   langtable.Language
	target   langtable.Language
	entry    langtable.Language
	hasEntry bool
	excluded []string
	scripts  []string

	// Folded match keys for the effective language.
	names    map[string]bool
	ids      map[string]bool
	allNames map[string]bool
	allIDs   map[string]bool

	scanNames []string
	scanIDs   []string
}

// NewFilterConfig resolves language codes against table. Unknown codes are
// reported as *domain.UnsupportedLanguageError.
func NewFilterConfig(table *langtable.Table, opts FilterOptions) (*FilterConfig, error) {
	src, err := table.Resolve("source_lang", opts.SourceLang)
	if err != nil {
		return nil, err
	}
	tgt, err := table.Resolve("target_lang", opts.TargetLang)
	if err != nil {
		return nil, err
	}

	cfg := &FilterConfig{
		table:    table,
		source:   src,
		target:   tgt,
		names:    make(map[string]bool),
		ids:      make(map[string]bool),
		allNames: make(map[string]bool),
		allIDs:   make(map[string]bool),
	}
	if strings.TrimSpace(opts.EntryLang) != "" {
		ent, err := table.Resolve("entry_lang", opts.EntryLang)
		if err != nil {
			return nil, err
		}
		cfg.entry, cfg.hasEntry = ent, true
	}

	excluded := opts.ExcludedSections
	if len(excluded) == 0 {
		excluded = table.ExcludedSections()
	}
	for _, s := range excluded {
		if k := domain.FoldKey(s); k != "" && !slices.Contains(cfg.excluded, k) {
			cfg.excluded = append(cfg.excluded, k)
		}
	}

	for _, s := range opts.Scripts {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" && !slices.Contains(cfg.scripts, s) {
			cfg.scripts = append(cfg.scripts, s)
		}
	}

	for _, l := range table.Languages() {
		for _, n := range l.Names() {
			cfg.allNames[domain.FoldKey(n)] = true
		}
		for _, id := range l.HeadingIDs() {
			cfg.allIDs[domain.FoldKey(id)] = true
		}
	}

	eff := cfg.EffectiveLang()
	for _, n := range eff.Names() {
		k := domain.FoldKey(n)
		cfg.names[k] = true
		cfg.scanNames = append(cfg.scanNames, k)
	}
	for _, id := range eff.HeadingIDs() {
		k := domain.FoldKey(id)
		cfg.ids[k] = true
		cfg.scanIDs = append(cfg.scanIDs, k)
	}
	return cfg, nil
}

// SourceLang returns the wiki edition's language.
func (c *FilterConfig) SourceLang() langtable.Language { return c.source }

// TargetLang returns the language definitions are written in.
func (c *FilterConfig) TargetLang() langtable.Language { return c.target }

// EntryLang returns the entry-language filter and whether it is set.
func (c *FilterConfig) EntryLang() (langtable.Language, bool) { return c.entry, c.hasEntry }

// EffectiveLang returns the language whose sections are extracted:
// EntryLang when set, otherwise SourceLang.
func (c *FilterConfig) EffectiveLang() langtable.Language {
	if c.hasEntry {
		return c.entry
	}
	return c.source
}

// Scripts returns the admitted writing systems; empty means no filter.
func (c *FilterConfig) Scripts() []string { return slices.Clone(c.scripts) }

// AllowsScript reports whether headword passes the writing-system filter.
func (c *FilterConfig) AllowsScript(headword string) bool {
	return script.Matches(headword, c.scripts)
}

// IsExcluded reports whether a heading title contains any excluded section
// title, ignoring case.
func (c *FilterConfig) IsExcluded(title string) bool {
	k := domain.FoldKey(title)
	if k == "" {
		return false
	}
	for _, ex := range c.excluded {
		if strings.Contains(k, ex) {
			return true
		}
	}
	return false
}

// ExcludedSections returns the folded excluded titles.
func (c *FilterConfig) ExcludedSections() []string { return slices.Clone(c.excluded) }

// matchesLanguage reports whether a heading names the effective language.
func (c *FilterConfig) matchesLanguage(title string, ids []string) bool {
	if c.names[domain.FoldKey(title)] {
		return true
	}
	for _, id := range ids {
		if c.ids[domain.FoldKey(id)] {
			return true
		}
	}
	return false
}

// matchesAnyLanguage reports whether a heading names any language in the table.
func (c *FilterConfig) matchesAnyLanguage(title string, ids []string) bool {
	if c.allNames[domain.FoldKey(title)] {
		return true
	}
	for _, id := range ids {
		if c.allIDs[domain.FoldKey(id)] {
			return true
		}
	}
	return false
}
