package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
input: "/data/wiktionary"
output: "/data/out/ca-en.xdxf"
source_lang: "ca"
target_lang: "en"
name: "Viccionari"
format: "xdxf"
jobs: 4
batch_size: 500
limit: 20
include: "**/*.html"
excluded_sections: ["Translations", "Traduccions"]
scripts: ["latin"]
merge: true
inline_markup: true
progress_interval: "2s"

log:
  level: "debug"
  format: "text"
`

func validConfig() *Config {
	return &Config{
		Input:            "/in",
		Output:           "/out/dict.xdxf",
		SourceLang:       "en",
		TargetLang:       "en",
		Name:             "Wiktionary Dictionary",
		Format:           FormatXDXF,
		Jobs:             2,
		BatchSize:        100,
		TempDir:          "/tmp",
		Include:          "**",
		Scripts:          []string{ScriptsAll},
		ProgressInterval: time.Second,
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Input != "/data/wiktionary" {
		t.Errorf("input = %q", cfg.Input)
	}
	if cfg.SourceLang != "ca" || cfg.TargetLang != "en" {
		t.Errorf("langs = %q/%q, want ca/en", cfg.SourceLang, cfg.TargetLang)
	}
	if cfg.Jobs != 4 {
		t.Errorf("jobs = %d, want 4", cfg.Jobs)
	}
	if cfg.BatchSize != 500 {
		t.Errorf("batch_size = %d, want 500", cfg.BatchSize)
	}
	if cfg.Limit != 20 {
		t.Errorf("limit = %d, want 20", cfg.Limit)
	}
	if len(cfg.ExcludedSections) != 2 || cfg.ExcludedSections[1] != "Traduccions" {
		t.Errorf("excluded_sections = %v", cfg.ExcludedSections)
	}
	if len(cfg.Scripts) != 1 || cfg.Scripts[0] != "latin" {
		t.Errorf("scripts = %v", cfg.Scripts)
	}
	if !cfg.Merge || !cfg.InlineMarkup {
		t.Errorf("merge = %v, inline_markup = %v, want both true", cfg.Merge, cfg.InlineMarkup)
	}
	if cfg.ProgressInterval != 2*time.Second {
		t.Errorf("progress_interval = %v, want 2s", cfg.ProgressInterval)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("WPBD_TARGET_LANG", "ru")
	t.Setenv("WPBD_JOBS", "8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TargetLang != "ru" {
		t.Errorf("target_lang = %q, want ru", cfg.TargetLang)
	}
	if cfg.Jobs != 8 {
		t.Errorf("jobs = %d, want 8", cfg.Jobs)
	}
}

func TestLoad_EnvDefaults(t *testing.T) {
	t.Setenv("WPBD_INPUT", "/in")
	t.Setenv("WPBD_EXCLUDED_SECTIONS", "Translations,See also")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Input != "/in" {
		t.Errorf("input = %q, want /in", cfg.Input)
	}
	if cfg.SourceLang != "en" || cfg.TargetLang != "en" {
		t.Errorf("langs = %q/%q, want en/en", cfg.SourceLang, cfg.TargetLang)
	}
	if cfg.Format != FormatXDXF {
		t.Errorf("format = %q, want xdxf", cfg.Format)
	}
	if cfg.BatchSize != 10000 {
		t.Errorf("batch_size = %d, want 10000", cfg.BatchSize)
	}
	if cfg.Include != "**" {
		t.Errorf("include = %q, want **", cfg.Include)
	}
	if cfg.ProgressInterval != 5*time.Second {
		t.Errorf("progress_interval = %v, want 5s", cfg.ProgressInterval)
	}
	if cfg.Log.Format != "auto" {
		t.Errorf("log.format = %q, want auto", cfg.Log.Format)
	}
	if len(cfg.ExcludedSections) != 2 || cfg.ExcludedSections[1] != "See also" {
		t.Errorf("excluded_sections = %v", cfg.ExcludedSections)
	}
	if cfg.ScriptFilter() != nil {
		t.Errorf("default scripts should admit everything, got %v", cfg.ScriptFilter())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate_FillsDerivedDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Jobs = 0
	cfg.TempDir = ""
	cfg.Include = ""
	cfg.SourceLang = " CA "
	cfg.Format = "Lingvo"
	cfg.Scripts = []string{" Latin ", ""}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Jobs != runtime.NumCPU() {
		t.Errorf("jobs = %d, want %d", cfg.Jobs, runtime.NumCPU())
	}
	if cfg.TempDir != os.TempDir() {
		t.Errorf("temp_dir = %q, want %q", cfg.TempDir, os.TempDir())
	}
	if cfg.Include != "**" {
		t.Errorf("include = %q, want **", cfg.Include)
	}
	if cfg.SourceLang != "ca" {
		t.Errorf("source_lang = %q, want ca", cfg.SourceLang)
	}
	if cfg.Format != FormatLingvo {
		t.Errorf("format = %q, want lingvo", cfg.Format)
	}
	if got := cfg.ScriptFilter(); len(got) != 1 || got[0] != "latin" {
		t.Errorf("scripts = %v, want [latin]", got)
	}
}

func TestValidate_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing input", func(c *Config) { c.Input = "" }, "input"},
		{"missing output", func(c *Config) { c.Output = "" }, "output"},
		{"bad format", func(c *Config) { c.Format = "stardict" }, "format"},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, "jobs"},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, "batch_size"},
		{"negative limit", func(c *Config) { c.Limit = -3 }, "limit"},
		{"zero interval", func(c *Config) { c.ProgressInterval = 0 }, "progress_interval"},
		{"bad glob", func(c *Config) { c.Include = "[a-" }, "include"},
		{"unknown script", func(c *Config) { c.Scripts = []string{"klingon"} }, "scripts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Error("expected errors.Is(err, ErrValidation)")
			}
			if len(ve.Errors) != 1 || ve.Errors[0].Field != tt.field {
				t.Errorf("errors = %+v, want one on %q", ve.Errors, tt.field)
			}
		})
	}
}

func TestValidate_DryRunNeedsNoOutput(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Output = ""
	cfg.DryRun = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mutate func(*Config)
		field  string
		code   string
	}{
		{func(c *Config) { c.SourceLang = "xx" }, "source_lang", "xx"},
		{func(c *Config) { c.TargetLang = "tlh" }, "target_lang", "tlh"},
		{func(c *Config) { c.EntryLang = "zz" }, "entry_lang", "zz"},
	}

	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)
		err := cfg.Validate()

		var ule *domain.UnsupportedLanguageError
		if !errors.As(err, &ule) {
			t.Fatalf("%s: expected *UnsupportedLanguageError, got %v", tt.field, err)
		}
		if ule.Field != tt.field || ule.Code != tt.code {
			t.Errorf("got %s=%q, want %s=%q", ule.Field, ule.Code, tt.field, tt.code)
		}
	}
}

func TestDictionaryName(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Name = "Wiktionary"
	if got := cfg.DictionaryName(); got != "Wiktionary (English-English)" {
		t.Errorf("DictionaryName() = %q", got)
	}

	cfg.EntryLang = "ru"
	if got := cfg.DictionaryName(); got != "Wiktionary (Russian-English)" {
		t.Errorf("DictionaryName() with entry_lang = %q", got)
	}
}
