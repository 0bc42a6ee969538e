package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/omfmartin/pocket-book-dictionary/internal/app"
	"github.com/omfmartin/pocket-book-dictionary/internal/app/converter"
	"github.com/omfmartin/pocket-book-dictionary/internal/config"
	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/internal/formatter"
	"github.com/omfmartin/pocket-book-dictionary/internal/output"
	"github.com/omfmartin/pocket-book-dictionary/pkg/ctxutil"
)

type cliOptions struct {
	configPath string
	debug      bool
	flags      config.Config
}

func newRootCmd() *cobra.Command {
	var opts cliOptions

	cmd := &cobra.Command{
		Use:           "wpbd",
		Short:         "Convert Wiktionary HTML pages into a PocketBook-ready dictionary source",
		Version:       app.BuildVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd.Flags(), cfg, &opts.flags)
			if opts.debug {
				cfg.Log.Level = "debug"
			}
			return run(cmd.Context(), cfg)
		},
	}

	bindFlags(cmd.Flags(), &opts)

	return cmd
}

func bindFlags(fl *pflag.FlagSet, opts *cliOptions) {
	f := &opts.flags
	fl.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fl.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	fl.StringVarP(&f.Input, "input", "i", "", "directory of Wiktionary HTML files")
	fl.StringVarP(&f.Output, "output", "o", "", "output dictionary file")
	fl.StringVarP(&f.SourceLang, "source-lang", "s", "en", "language code of the Wiktionary edition")
	fl.StringVarP(&f.TargetLang, "target-lang", "t", "en", "language code of the definitions")
	fl.StringVar(&f.EntryLang, "entry-lang", "", "extract only entries of this language (default: source language)")
	fl.StringVarP(&f.Name, "name", "n", "Wiktionary Dictionary", "dictionary name")
	fl.StringVarP(&f.Format, "format", "f", config.FormatXDXF, "output format: lingvo or xdxf")
	fl.IntVarP(&f.Jobs, "jobs", "j", 0, "parallel workers (0 = one per CPU)")
	fl.IntVar(&f.BatchSize, "batch-size", 10000, "files per worker batch")
	fl.IntVar(&f.Limit, "limit", 0, "process at most this many input files (0 = all)")
	fl.StringVar(&f.TempDir, "temp-dir", "", "directory for temporary output (default: system temp)")
	fl.StringVar(&f.Include, "include", "**", "glob of input paths to process, relative to --input")
	fl.StringSliceVar(&f.ExcludedSections, "exclude-section", nil, "section titles to skip (replaces the built-in list)")
	fl.StringSliceVar(&f.Scripts, "scripts", []string{config.ScriptsAll}, "admitted headword scripts")
	fl.BoolVar(&f.Merge, "merge", false, "merge all entries of a headword into one article")
	fl.BoolVar(&f.InlineMarkup, "inline-markup", false, "keep bold, italic and links as format markup")
	fl.BoolVar(&f.DryRun, "dry-run", false, "scan and extract without writing the output file")
	fl.StringVar(&f.MetricsFile, "metrics-file", "", "write run counters in Prometheus text format to this file")
	fl.DurationVar(&f.ProgressInterval, "progress-interval", 5*time.Second, "interval between progress log lines")
	fl.StringVar(&f.Log.Level, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.Log.Format, "log-format", "auto", "log format: text, json or auto")
}

// applyFlags copies explicitly set flags from src over dst.
func applyFlags(fs *pflag.FlagSet, dst, src *config.Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("input", func() { dst.Input = src.Input })
	set("output", func() { dst.Output = src.Output })
	set("source-lang", func() { dst.SourceLang = src.SourceLang })
	set("target-lang", func() { dst.TargetLang = src.TargetLang })
	set("entry-lang", func() { dst.EntryLang = src.EntryLang })
	set("name", func() { dst.Name = src.Name })
	set("format", func() { dst.Format = src.Format })
	set("jobs", func() { dst.Jobs = src.Jobs })
	set("batch-size", func() { dst.BatchSize = src.BatchSize })
	set("limit", func() { dst.Limit = src.Limit })
	set("temp-dir", func() { dst.TempDir = src.TempDir })
	set("include", func() { dst.Include = src.Include })
	set("exclude-section", func() { dst.ExcludedSections = src.ExcludedSections })
	set("scripts", func() { dst.Scripts = src.Scripts })
	set("merge", func() { dst.Merge = src.Merge })
	set("inline-markup", func() { dst.InlineMarkup = src.InlineMarkup })
	set("dry-run", func() { dst.DryRun = src.DryRun })
	set("metrics-file", func() { dst.MetricsFile = src.MetricsFile })
	set("progress-interval", func() { dst.ProgressInterval = src.ProgressInterval })
	set("log-level", func() { dst.Log.Level = src.Log.Level })
	set("log-format", func() { dst.Log.Format = src.Log.Format })
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := app.NewLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		return err
	}
	filter, err := cfg.Filter()
	if err != nil {
		return err
	}
	f, err := formatter.New(cfg.Format, formatter.Options{InlineMarkup: cfg.InlineMarkup})
	if err != nil {
		return err
	}
	if !cfg.DryRun && filepath.Ext(cfg.Output) == "" {
		cfg.Output += f.Extension()
	}

	ctx = ctxutil.WithRunID(ctx, uuid.New())
	start := time.Now()
	logger.InfoContext(ctx, "starting conversion",
		slog.String("version", app.BuildVersion()),
		slog.String("input", cfg.Input),
		slog.String("output", cfg.Output),
		slog.String("format", cfg.Format),
		slog.String("source_lang", filter.SourceLang().Code),
		slog.String("target_lang", filter.TargetLang().Code),
		slog.String("entry_lang", filter.EffectiveLang().Code),
		slog.Any("scripts", filter.Scripts()),
		slog.Any("excluded_sections", filter.ExcludedSections()),
		slog.Int("jobs", cfg.Jobs),
		slog.Bool("dry_run", cfg.DryRun),
	)

	fs := afero.NewOsFs()
	conv := converter.New(fs, converter.Config{
		Filter:           filter,
		Jobs:             cfg.Jobs,
		BatchSize:        cfg.BatchSize,
		Limit:            cfg.Limit,
		Include:          cfg.Include,
		ProgressInterval: cfg.ProgressInterval,
	}, logger)

	res, runErr := conv.Run(ctx, cfg.Input)
	if runErr != nil && !errors.Is(runErr, domain.ErrSystemicFailure) {
		return runErr
	}

	if cfg.MetricsFile != "" {
		if err := res.WriteMetrics(cfg.MetricsFile); err != nil {
			logger.WarnContext(ctx, "write metrics", slog.String("path", cfg.MetricsFile), slog.String("error", err.Error()))
		}
	}

	s := res.Stats
	summary := []any{
		slog.Int("scanned", s.Scanned),
		slog.Int("admitted", s.Admitted),
		slog.Int("failed", s.Failed),
		slog.Int("entries", s.Entries),
		slog.Int("batches", s.Batches),
		slog.Duration("elapsed", time.Since(start)),
	}
	if runErr != nil {
		logger.ErrorContext(ctx, "every input file failed; check --input and --source-lang", summary...)
		return runErr
	}
	if s.Failed > 0 {
		logger.WarnContext(ctx, "some input files were skipped", slog.Int("failed", s.Failed))
	}

	if cfg.DryRun {
		logger.InfoContext(ctx, "dry run complete", summary...)
		return nil
	}

	entries := res.Entries
	if cfg.Merge {
		entries = formatter.Merge(entries)
	}
	header := formatter.Header{
		Name:       cfg.DictionaryName(),
		SourceLang: filter.EffectiveLang().Code,
		TargetLang: filter.TargetLang().Code,
	}
	err = output.WriteAtomic(ctx, fs, cfg.Output, cfg.TempDir, func(w io.Writer) error {
		return f.Format(w, entries, header)
	})
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "conversion complete", append(summary, slog.String("output", cfg.Output))...)
	return nil
}
