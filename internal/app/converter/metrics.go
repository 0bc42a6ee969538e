package converter

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Stats is the run summary.
type Stats struct {
	Scanned  int
	Admitted int
	Failed   int
	Entries  int
	Batches  int
}

// Systemic reports whether every scanned file failed.
func (s Stats) Systemic() bool {
	return s.Scanned > 0 && s.Failed == s.Scanned
}

// metrics holds the run counters in a registry private to one run, so
// concurrent runs in one process never share state.
type metrics struct {
	registry *prometheus.Registry

	scanned       prometheus.Counter
	admitted      prometheus.Counter
	failed        prometheus.Counter
	entries       prometheus.Counter
	batches       prometheus.Counter
	batchDuration prometheus.Histogram
}

func newMetrics() *metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wpbd", Name: name, Help: help})
	}

	m := &metrics{
		registry: prometheus.NewRegistry(),
		scanned:  counter("files_scanned_total", "Input files read by the candidate scanner."),
		admitted: counter("files_admitted_total", "Input files admitted for full extraction."),
		failed:   counter("files_failed_total", "Input files skipped on a read or markup error."),
		entries:  counter("entries_total", "Entries extracted."),
		batches:  counter("batches_total", "Batches completed by workers."),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wpbd",
			Name:      "batch_duration_seconds",
			Help:      "Wall time spent extracting one batch.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	m.registry.MustRegister(m.scanned, m.admitted, m.failed, m.entries, m.batches, m.batchDuration)
	return m
}

func (m *metrics) snapshot() Stats {
	return Stats{
		Scanned:  counterValue(m.scanned),
		Admitted: counterValue(m.admitted),
		Failed:   counterValue(m.failed),
		Entries:  counterValue(m.entries),
		Batches:  counterValue(m.batches),
	}
}

func counterValue(c prometheus.Counter) int {
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		return 0
	}
	return int(pb.GetCounter().GetValue())
}

// report logs progress every interval until ctx is done. It only reads
// counters and never holds up the workers.
func (m *metrics) report(ctx context.Context, logger *slog.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := m.snapshot()
			logger.InfoContext(ctx, "progress",
				slog.Int("scanned", s.Scanned),
				slog.Int("admitted", s.Admitted),
				slog.Int("failed", s.Failed),
				slog.Int("entries", s.Entries),
				slog.Int("batches", s.Batches),
			)
		}
	}
}

// WriteMetrics writes the run counters to path in the Prometheus text
// exposition format, for the node exporter textfile collector.
func (r *Result) WriteMetrics(path string) error {
	if r.registry == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
