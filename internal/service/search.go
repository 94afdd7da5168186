// Package service coordinates searches, storage, and matrix calculation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openssl-sg-insights/mandos/internal/metrics"
	"github.com/openssl-sg-insights/mandos/internal/model"
	"github.com/openssl-sg-insights/mandos/internal/search"
	"github.com/openssl-sg-insights/mandos/internal/store"
)

// SearchService fetches annotations for compounds and caches them as hits.
type SearchService struct {
	store   *store.Client
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewSearchService creates a new search service. The store may be nil, in
// which case results are only returned, never persisted.
func NewSearchService(st *store.Client, collector *metrics.Collector, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &SearchService{store: st, metrics: collector, logger: logger}
}

// SearchOptions configures a search run.
type SearchOptions struct {
	// Persist writes hits to the store after fetching.
	Persist bool
	// Replace deletes previously cached hits for the same search key
	// before persisting.
	Replace bool
	// Continue keeps going when a lookup fails, collecting the error
	// instead of aborting the run.
	Continue bool
}

// SearchResult summarizes one search run.
type SearchResult struct {
	RunID   string
	Hits    []model.Hit
	Skipped []string
	Errors  []string
}

// Run executes one search against every lookup, stamps all hits with a
// fresh run ID, and optionally persists them.
func (s *SearchService) Run(ctx context.Context, src search.Search, lookups []string, opts SearchOptions) (*SearchResult, error) {
	runID := uuid.NewString()
	result := &SearchResult{RunID: runID}

	s.logger.Info("starting search run",
		"run_id", runID,
		"search_key", src.Key(),
		"data_source", src.DataSource(),
		"lookups", len(lookups))

	for _, lookup := range lookups {
		start := time.Now()
		hits, err := src.Find(ctx, lookup)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !opts.Continue {
				return nil, fmt.Errorf("search %s for %s: %w", src.Key(), lookup, err)
			}
			s.logger.Warn("lookup failed, continuing", "lookup", lookup, "error", err)
			result.Skipped = append(result.Skipped, lookup)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", lookup, err))
			continue
		}
		s.metrics.RecordBatch(metrics.OpSearchFetch, time.Since(start), int64(len(hits)))

		for i := range hits {
			hits[i].RunID = runID
		}
		result.Hits = append(result.Hits, hits...)
	}

	if opts.Persist && s.store != nil {
		if opts.Replace {
			if err := s.store.DeleteBySearchKey(ctx, src.Key()); err != nil {
				return nil, fmt.Errorf("replace cached hits: %w", err)
			}
		}
		start := time.Now()
		if err := s.store.InsertHits(ctx, result.Hits); err != nil {
			return nil, fmt.Errorf("persist hits: %w", err)
		}
		s.metrics.RecordBatch(metrics.OpStoreInsert, time.Since(start), int64(len(result.Hits)))
	}

	s.logger.Info("search run complete",
		"run_id", runID,
		"hits", len(result.Hits),
		"skipped", len(result.Skipped))

	return result, nil
}
