// Package analysis computes pairwise concordance between compounds from
// their annotation hits.
package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

// MatrixCalculator computes a labeled similarity matrix from a hit snapshot.
// Variants are alternative scoring strategies; callers pick one explicitly.
type MatrixCalculator interface {
	Calc(ctx context.Context, hits []model.Hit) (*Matrix, error)
}

// JPrimeCalculator scores compound pairs with a confidence-weighted
// Jaccard-like index (J'): per matched pair, the geometric mean of the two
// weights over their weighted union; averaged per data source, then averaged
// across the data sources the two compounds share. Compounds sharing no
// source get NaN.
//
// The calculator is stateless and safe for concurrent use.
type JPrimeCalculator struct {
	// Workers bounds the number of goroutines computing cells.
	// Zero or negative means GOMAXPROCS.
	Workers int

	// Progress, if non-nil, is called after each cell with the number of
	// cells finished and the total. Calls may come from multiple goroutines.
	Progress func(done, total int)
}

var _ MatrixCalculator = (*JPrimeCalculator)(nil)

// sourcedHits holds one compound's hits grouped by data source, with the
// source keys in first-seen order.
type sourcedHits struct {
	sources []string
	hits    map[string][]model.Hit
}

// Calc assembles the full N×N matrix over the distinct origin identifiers in
// hits. Every ordered pair is computed independently, including the diagonal:
// self-similarity follows from the formula (0.5 for a compound whose every
// claim matches itself), it is not assumed.
func (c *JPrimeCalculator) Calc(ctx context.Context, hits []model.Hit) (*Matrix, error) {
	byOrigin := groupHits(hits)
	keys := byOrigin.keys
	m := NewMatrix(keys)
	if len(keys) == 0 {
		return m, nil
	}

	type cell struct{ i, j int }
	jobs := make(chan cell)

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	total := len(keys) * len(keys)
	if workers > total {
		workers = total
	}

	var done atomic.Int64
	var firstErr error
	var errOnce sync.Once
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				score, err := c.concordance(byOrigin.group(keys[job.i]), byOrigin.group(keys[job.j]))
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("cell (%s, %s): %w", keys[job.i], keys[job.j], err)
					})
					continue
				}
				// Cells are disjoint, so writers never race.
				m.cells[job.i][job.j] = score
				if c.Progress != nil {
					c.Progress(int(done.Add(1)), total)
				} else {
					done.Add(1)
				}
			}
		}()
	}

feed:
	for i := range keys {
		for j := range keys {
			select {
			case jobs <- cell{i, j}:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

// concordance scores one ordered compound pair: the mean per-source score
// over the data sources both compounds carry. NaN when they share no source,
// and also when every nominally shared source yields no matched pairs; a
// contributionless source never inflates the divisor.
func (c *JPrimeCalculator) concordance(a, b sourcedHits) (float64, error) {
	var scores []float64
	for _, source := range a.sources {
		other, ok := b.hits[source]
		if !ok {
			continue
		}
		score, ok, err := sourceScore(a.hits[source], other)
		if err != nil {
			return 0, fmt.Errorf("source %s: %w", source, err)
		}
		if ok {
			scores = append(scores, score)
		}
	}
	if len(scores) == 0 {
		return math.NaN(), nil
	}
	return mean(scores), nil
}

// sourceScore averages the per-pair wedge/vee scores for one shared data
// source. ok is false when the two collections have no matched pairs.
func sourceScore(hitsA, hitsB []model.Hit) (score float64, ok bool, err error) {
	var values []float64
	for _, pair := range pairWeights(hitsA, hitsB) {
		v, ok, err := pairScore(pair[0], pair[1])
		if err != nil {
			return 0, false, err
		}
		if ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, false, nil
	}
	return mean(values), true, nil
}

// originGroups is a two-level grouping, origin then data source, built in a
// single pass over the snapshot.
type originGroups struct {
	keys   []string
	groups map[string]*sourcedHits
}

func (g *originGroups) group(origin string) sourcedHits {
	return *g.groups[origin]
}

func groupHits(hits []model.Hit) *originGroups {
	g := &originGroups{groups: make(map[string]*sourcedHits)}
	for _, h := range hits {
		sh, ok := g.groups[h.OriginID]
		if !ok {
			sh = &sourcedHits{hits: make(map[string][]model.Hit)}
			g.groups[h.OriginID] = sh
			g.keys = append(g.keys, h.OriginID)
		}
		if _, ok := sh.hits[h.DataSource]; !ok {
			sh.sources = append(sh.sources, h.DataSource)
		}
		sh.hits[h.DataSource] = append(sh.hits[h.DataSource], h)
	}
	return g
}
