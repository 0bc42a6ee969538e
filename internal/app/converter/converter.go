// Package converter runs the two-phase conversion: a cheap candidate scan
// over every input file, then full extraction of the admitted files in
// batches on a pool of workers, merged back in input order.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/internal/wiktionary"
)

// Config holds the coordinator settings of one run.
type Config struct {
	Filter           *wiktionary.FilterConfig
	Jobs             int
	BatchSize        int
	Limit            int
	Include          string
	ProgressInterval time.Duration
}

// Result is the outcome of a run: entries ordered by input path, and the
// counters that describe how they were obtained.
type Result struct {
	Entries []domain.Entry
	Stats   Stats

	registry *prometheus.Registry
}

type (
	candidateFunc func(domain.RawDocument, *wiktionary.FilterConfig) bool
	extractFunc   func(domain.RawDocument, *wiktionary.FilterConfig) ([]domain.Entry, error)
)

// Converter reads input files from an afero filesystem and extracts entries.
type Converter struct {
	fs        afero.Fs
	cfg       Config
	log       *slog.Logger
	candidate candidateFunc
	extract   extractFunc
}

// New creates a Converter. Jobs and BatchSize below 1 are treated as 1.
func New(fs afero.Fs, cfg Config, logger *slog.Logger) *Converter {
	cfg.Jobs = max(cfg.Jobs, 1)
	cfg.BatchSize = max(cfg.BatchSize, 1)
	if cfg.Include == "" {
		cfg.Include = "**"
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 5 * time.Second
	}
	return &Converter{
		fs:        fs,
		cfg:       cfg,
		log:       logger.With("component", "converter"),
		candidate: wiktionary.IsCandidate,
		extract:   wiktionary.ExtractDocument,
	}
}

// Run converts every matching file under inputDir. Output order depends
// only on the input paths, never on Jobs.
//
// Files that cannot be read or parsed are logged, counted and skipped.
// A crashed worker fails the run with *domain.WorkerFailure; a crash in
// the scan phase carries batch -1. When every
// scanned file failed, the result is returned together with
// domain.ErrSystemicFailure.
func (c *Converter) Run(ctx context.Context, inputDir string) (*Result, error) {
	m := newMetrics()

	files, err := enumerate(c.fs, inputDir, c.cfg.Include, c.cfg.Limit)
	if err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "input enumerated", slog.String("dir", inputDir), slog.Int("files", len(files)))

	reportCtx, stopReport := context.WithCancel(ctx)
	defer stopReport()
	go m.report(reportCtx, c.log, c.cfg.ProgressInterval)

	admitted, err := c.scan(ctx, inputDir, files, m)
	if err != nil {
		return nil, err
	}

	batches := partition(admitted, c.cfg.BatchSize)
	c.log.InfoContext(ctx, "scan finished",
		slog.Int("admitted", len(admitted)),
		slog.Int("batches", len(batches)),
	)

	entries, err := c.extractAll(ctx, inputDir, batches, m)
	if err != nil {
		return nil, err
	}

	res := &Result{Entries: entries, Stats: m.snapshot(), registry: m.registry}
	if res.Stats.Systemic() {
		return res, fmt.Errorf("%w: %d of %d files", domain.ErrSystemicFailure, res.Stats.Failed, res.Stats.Scanned)
	}
	return res, nil
}

// scan runs the candidate check over all files on Jobs goroutines and
// returns the admitted ones in input order.
func (c *Converter) scan(ctx context.Context, root string, files []string, m *metrics) ([]string, error) {
	keep := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Jobs)
	for i, rel := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					c.log.ErrorContext(gctx, "scanner panic", slog.String("path", rel), slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
					err = &domain.WorkerFailure{Batch: -1, Cause: fmt.Errorf("scan %s: panic: %v", rel, r)}
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			m.scanned.Inc()

			data, err := afero.ReadFile(c.fs, filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				m.failed.Inc()
				c.log.WarnContext(gctx, "read failed", slog.String("path", rel), slog.String("error", err.Error()))
				return nil
			}

			if c.candidate(domain.RawDocument{Path: rel, Data: data}, c.cfg.Filter) {
				keep[i] = true
				m.admitted.Inc()
			} else {
				c.log.DebugContext(gctx, "rejected", slog.String("path", rel))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	admitted := make([]string, 0, len(files))
	for i, ok := range keep {
		if ok {
			admitted = append(admitted, files[i])
		}
	}
	return admitted, nil
}

// extractAll dispatches batches to at most Jobs workers. Workers send
// self-contained results back over a channel; only this goroutine's
// collector touches the ordered result slots.
func (c *Converter) extractAll(ctx context.Context, root string, batches []batch, m *metrics) ([]domain.Entry, error) {
	slots := make([][]domain.Entry, len(batches))
	results := make(chan batchResult)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		for r := range results {
			slots[r.index] = r.entries
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Jobs)
	for _, b := range batches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r, err := c.runBatch(gctx, root, b, m)
			if err != nil {
				return err
			}
			select {
			case results <- r:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	err := g.Wait()
	close(results)
	<-collected

	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var n int
	for _, s := range slots {
		n += len(s)
	}
	entries := make([]domain.Entry, 0, n)
	for _, s := range slots {
		entries = append(entries, s...)
	}
	return entries, nil
}

func isMalformed(err error) bool {
	return errors.Is(err, domain.ErrMalformedMarkup)
}
