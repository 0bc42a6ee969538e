package config

import "time"

// Output format selectors.
const (
	FormatLingvo = "lingvo"
	FormatXDXF   = "xdxf"
)

// ScriptsAll disables the writing-system filter.
const ScriptsAll = "all"

// Config is the resolved settings of one conversion run.
type Config struct {
	Input      string `yaml:"input"       env:"WPBD_INPUT"`
	Output     string `yaml:"output"      env:"WPBD_OUTPUT"`
	SourceLang string `yaml:"source_lang" env:"WPBD_SOURCE_LANG" env-default:"en"`
	TargetLang string `yaml:"target_lang" env:"WPBD_TARGET_LANG" env-default:"en"`
	EntryLang  string `yaml:"entry_lang"  env:"WPBD_ENTRY_LANG"`
	Name       string `yaml:"name"        env:"WPBD_NAME"        env-default:"Wiktionary Dictionary"`
	Format     string `yaml:"format"      env:"WPBD_FORMAT"      env-default:"xdxf"`

	// Jobs of 0 means one worker per CPU.
	Jobs      int    `yaml:"jobs"       env:"WPBD_JOBS"       env-default:"0"`
	BatchSize int    `yaml:"batch_size" env:"WPBD_BATCH_SIZE" env-default:"10000"`
	Limit     int    `yaml:"limit"      env:"WPBD_LIMIT"      env-default:"0"`
	TempDir   string `yaml:"temp_dir"   env:"WPBD_TEMP_DIR"`
	Include   string `yaml:"include"    env:"WPBD_INCLUDE"    env-default:"**"`

	// ExcludedSections replaces the built-in synonym list when non-empty.
	ExcludedSections []string `yaml:"excluded_sections" env:"WPBD_EXCLUDED_SECTIONS" env-separator:","`
	Scripts          []string `yaml:"scripts"           env:"WPBD_SCRIPTS"           env-separator:"," env-default:"all"`

	Merge            bool          `yaml:"merge"             env:"WPBD_MERGE"`
	InlineMarkup     bool          `yaml:"inline_markup"     env:"WPBD_INLINE_MARKUP"`
	DryRun           bool          `yaml:"dry_run"           env:"WPBD_DRY_RUN"`
	MetricsFile      string        `yaml:"metrics_file"      env:"WPBD_METRICS_FILE"`
	ProgressInterval time.Duration `yaml:"progress_interval" env:"WPBD_PROGRESS_INTERVAL" env-default:"5s"`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"WPBD_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"WPBD_LOG_FORMAT" env-default:"auto"`
}

// ScriptFilter returns the admitted writing systems, or nil when every
// script is admitted.
func (c *Config) ScriptFilter() []string {
	var out []string
	for _, s := range c.Scripts {
		if s == ScriptsAll {
			return nil
		}
		out = append(out, s)
	}
	return out
}
