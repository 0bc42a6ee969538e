package converter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/spf13/afero"

	"github.com/omfmartin/pocket-book-dictionary/internal/domain"
	"github.com/omfmartin/pocket-book-dictionary/pkg/ctxutil"
)

// batch is a unit of work: consecutive admitted paths and their position
// in the run.
type batch struct {
	index int
	files []string
}

type batchResult struct {
	index   int
	entries []domain.Entry
}

// runBatch extracts every file of b. Per-file errors are absorbed here;
// a panic is converted into *domain.WorkerFailure.
func (c *Converter) runBatch(ctx context.Context, root string, b batch, m *metrics) (res batchResult, err error) {
	ctx = ctxutil.WithBatch(ctx, b.index)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.log.ErrorContext(ctx, "worker panic", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
			err = &domain.WorkerFailure{Batch: b.index, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	res.index = b.index
	for _, rel := range b.files {
		if err := ctx.Err(); err != nil {
			return batchResult{}, err
		}

		data, err := afero.ReadFile(c.fs, filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			m.failed.Inc()
			c.log.WarnContext(ctx, "read failed", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}

		entries, err := c.extract(domain.RawDocument{Path: rel, Data: data}, c.cfg.Filter)
		if err != nil {
			if !isMalformed(err) {
				return batchResult{}, &domain.WorkerFailure{Batch: b.index, Cause: err}
			}
			m.failed.Inc()
			c.log.WarnContext(ctx, "skipping file", slog.String("path", rel), slog.String("error", err.Error()))
			continue
		}

		for _, e := range entries {
			if !e.Valid() {
				c.log.DebugContext(ctx, "dropping empty entry", slog.String("path", rel), slog.String("headword", e.Headword))
				continue
			}
			res.entries = append(res.entries, e)
			m.entries.Inc()
		}
	}

	m.batches.Inc()
	m.batchDuration.Observe(time.Since(start).Seconds())
	c.log.DebugContext(ctx, "batch done", slog.Int("files", len(b.files)), slog.Int("entries", len(res.entries)))
	return res, nil
}
