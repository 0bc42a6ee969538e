package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/internal/langtable"
	"github.com/omfmartin/pocket-book-dictionary/internal/script"
	"github.com/omfmartin/pocket-book-dictionary/internal/wiktionary"
)

// Validate checks the configuration and fills derived defaults (jobs,
// temp dir, normalised codes). Unknown language codes are reported as
// *domain.UnsupportedLanguageError; every other problem is collected
// into one *domain.ValidationError.
func (c *Config) Validate() error {
	c.normalize()

	var errs []domain.FieldError
	add := func(field, msg string) {
		errs = append(errs, domain.FieldError{Field: field, Message: msg})
	}

	if c.Input == "" {
		add("input", "required")
	}
	if c.Output == "" && !c.DryRun {
		add("output", "required")
	}
	if c.Format != FormatLingvo && c.Format != FormatXDXF {
		add("format", fmt.Sprintf("must be %s or %s (got %q)", FormatLingvo, FormatXDXF, c.Format))
	}
	if c.Jobs < 1 {
		add("jobs", fmt.Sprintf("must be >= 1 (got %d)", c.Jobs))
	}
	if c.BatchSize < 1 {
		add("batch_size", fmt.Sprintf("must be >= 1 (got %d)", c.BatchSize))
	}
	if c.Limit < 0 {
		add("limit", fmt.Sprintf("must be >= 0 (got %d)", c.Limit))
	}
	if c.ProgressInterval <= 0 {
		add("progress_interval", "must be > 0")
	}
	if !doublestar.ValidatePattern(c.Include) {
		add("include", fmt.Sprintf("invalid glob %q", c.Include))
	}
	for _, s := range c.Scripts {
		if s != ScriptsAll && !script.Known(s) {
			add("scripts", fmt.Sprintf("unknown script %q (known: %s)", s, strings.Join(script.Names(), ", ")))
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}

	if _, err := c.Filter(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalize() {
	c.SourceLang = strings.ToLower(strings.TrimSpace(c.SourceLang))
	c.TargetLang = strings.ToLower(strings.TrimSpace(c.TargetLang))
	c.EntryLang = strings.ToLower(strings.TrimSpace(c.EntryLang))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Name = strings.TrimSpace(c.Name)

	if c.Jobs == 0 {
		c.Jobs = runtime.NumCPU()
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.Include == "" {
		c.Include = "**"
	}

	scripts := make([]string, 0, len(c.Scripts))
	for _, s := range c.Scripts {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			scripts = append(scripts, s)
		}
	}
	if len(scripts) == 0 {
		scripts = []string{ScriptsAll}
	}
	c.Scripts = scripts
}

// Filter resolves the immutable extraction filter for this run.
func (c *Config) Filter() (*wiktionary.FilterConfig, error) {
	return wiktionary.NewFilterConfig(langtable.Default(), wiktionary.FilterOptions{
		SourceLang:       c.SourceLang,
		TargetLang:       c.TargetLang,
		EntryLang:        c.EntryLang,
		ExcludedSections: c.ExcludedSections,
		Scripts:          c.ScriptFilter(),
	})
}

// DictionaryName returns "<name> (<Entry language>-<Target language>)".
func (c *Config) DictionaryName() string {
	tbl := langtable.Default()
	entry := c.SourceLang
	if c.EntryLang != "" {
		entry = c.EntryLang
	}
	name := func(code string) string {
		if l, ok := tbl.Lookup(code); ok {
			return l.Name
		}
		return code
	}
	return fmt.Sprintf("%s (%s-%s)", c.Name, name(entry), name(c.TargetLang))
}
