package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openssl-sg-insights/mandos/internal/analysis"
	"github.com/openssl-sg-insights/mandos/internal/metrics"
	"github.com/openssl-sg-insights/mandos/internal/model"
	"github.com/openssl-sg-insights/mandos/internal/store"
)

// ConcordService turns cached hits into a pairwise concordance matrix.
type ConcordService struct {
	store   *store.Client
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewConcordService creates a new concordance service. The store may be nil
// when hits are supplied from a file instead.
func NewConcordService(st *store.Client, collector *metrics.Collector, logger *slog.Logger) *ConcordService {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &ConcordService{store: st, metrics: collector, logger: logger}
}

// ConcordOptions configures a matrix calculation.
type ConcordOptions struct {
	// Rules filters hits before scoring. Nil applies no filtering.
	Rules *analysis.Filtration
	// Workers caps the calculator's parallelism. Zero lets the
	// calculator decide.
	Workers int
	// Progress receives completed/total cell counts, if set.
	Progress func(done, total int)
}

// LoadHits reads all cached hits from the store.
func (s *ConcordService) LoadHits(ctx context.Context) ([]model.Hit, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no hit store configured")
	}
	start := time.Now()
	hits, err := s.store.ListHits(ctx)
	if err != nil {
		return nil, fmt.Errorf("load hits: %w", err)
	}
	s.metrics.RecordTiming(metrics.OpStoreQuery, time.Since(start))
	return hits, nil
}

// LoadHitsFile reads hits from a TSV table on disk.
func (s *ConcordService) LoadHitsFile(path string) ([]model.Hit, error) {
	hits, err := model.ReadHitsFile(path)
	if err != nil {
		return nil, fmt.Errorf("load hits file: %w", err)
	}
	return hits, nil
}

// Calc filters the hits and computes the full concordance matrix.
func (s *ConcordService) Calc(ctx context.Context, hits []model.Hit, opts ConcordOptions) (*analysis.Matrix, error) {
	if opts.Rules != nil {
		before := len(hits)
		hits = opts.Rules.Apply(hits)
		s.logger.Info("applied filtration rules", "before", before, "after", len(hits))
	}

	calc := &analysis.JPrimeCalculator{
		Workers:  opts.Workers,
		Progress: opts.Progress,
	}

	start := time.Now()
	m, err := calc.Calc(ctx, hits)
	if err != nil {
		return nil, fmt.Errorf("calculate matrix: %w", err)
	}
	cells := int64(m.Len()) * int64(m.Len())
	s.metrics.RecordBatch(metrics.OpMatrixCalc, time.Since(start), cells)

	s.logger.Info("matrix calculated",
		"compounds", m.Len(),
		"hits", len(hits),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return m, nil
}

// Metrics returns a snapshot of the collector backing this service.
func (s *ConcordService) Metrics() metrics.Snapshot {
	return s.metrics.Snapshot()
}
