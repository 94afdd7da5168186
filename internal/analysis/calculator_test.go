package analysis

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

func testHit(origin, source, predicate, object string, weight float64) model.Hit {
	return model.Hit{
		OriginID:   origin,
		DataSource: source,
		Predicate:  predicate,
		ObjectID:   object,
		Weight:     weight,
	}
}

func calc(t *testing.T, hits []model.Hit) *Matrix {
	t.Helper()
	m, err := (&JPrimeCalculator{}).Calc(context.Background(), hits)
	require.NoError(t, err)
	return m
}

func cell(t *testing.T, m *Matrix, a, b string) float64 {
	t.Helper()
	v, ok := m.Get(a, b)
	require.True(t, ok, "missing cell (%s, %s)", a, b)
	return v
}

func TestCalcEmptyInput(t *testing.T) {
	m := calc(t, nil)
	assert.Zero(t, m.Len())
}

func TestCalcSingleSharedSource(t *testing.T) {
	// One matched claim with confidence 1.0 on both sides:
	// per-pair 0.5, source 0.5, final 0.5.
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 1),
	}
	m := calc(t, hits)
	assert.Equal(t, 0.5, cell(t, m, "A", "B"))
	assert.Equal(t, 0.5, cell(t, m, "B", "A"))
}

func TestCalcNoSharedSourceIsUndefined(t *testing.T) {
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "Y", "p", "1", 1),
	}
	m := calc(t, hits)
	assert.True(t, math.IsNaN(cell(t, m, "A", "B")), "incomparable pair must be NaN, not a score")
	assert.True(t, math.IsNaN(cell(t, m, "B", "A")))
}

func TestCalcAveragesAcrossSharedSources(t *testing.T) {
	// Source X: one (1,1) pair -> 0.5.
	// Source Y: two matched claims weighted (9,1) and (1,9) -> 0.3 each -> 0.3.
	// Final: mean(0.5, 0.3) = 0.4.
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 1),
		testHit("A", "Y", "q", "2", 9),
		testHit("B", "Y", "q", "2", 1),
		testHit("A", "Y", "q", "3", 1),
		testHit("B", "Y", "q", "3", 9),
	}
	m := calc(t, hits)
	assert.InDelta(t, 0.4, cell(t, m, "A", "B"), 1e-15)
	assert.InDelta(t, 0.4, cell(t, m, "B", "A"), 1e-15)
}

func TestCalcSharedSourceWithoutPairsExcluded(t *testing.T) {
	// Source Y is nominally shared but its claims never match, so it must
	// not dilute the average from source X.
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 1),
		testHit("A", "Y", "q", "2", 1),
		testHit("B", "Y", "q", "3", 1),
	}
	m := calc(t, hits)
	assert.Equal(t, 0.5, cell(t, m, "A", "B"))
}

func TestCalcOnlyPairlessSharedSourcesIsUndefined(t *testing.T) {
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "2", 1),
	}
	m := calc(t, hits)
	assert.True(t, math.IsNaN(cell(t, m, "A", "B")))
}

func TestCalcSelfSimilarity(t *testing.T) {
	// The diagonal is computed by the same formula, not assumed: every
	// claim matches itself at equal weight, so it lands on 0.5 exactly.
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("A", "X", "p", "2", 0.25),
		testHit("A", "Y", "q", "3", 2),
	}
	m := calc(t, hits)
	assert.Equal(t, 0.5, cell(t, m, "A", "A"))
}

func TestCalcShape(t *testing.T) {
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 1),
		testHit("C", "Y", "q", "2", 1),
		testHit("A", "Y", "q", "2", 1),
	}
	m := calc(t, hits)
	require.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"A", "B", "C"}, m.Keys())

	seen := map[string]int{}
	for _, k := range m.Keys() {
		seen[k]++
	}
	for k, n := range seen {
		assert.Equal(t, 1, n, "key %s appears %d times", k, n)
	}
}

func TestCalcOrderIndependent(t *testing.T) {
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 0.5),
		testHit("A", "Y", "q", "2", 2),
		testHit("B", "Y", "q", "2", 2),
		testHit("C", "X", "p", "1", 3),
	}
	shuffled := []model.Hit{hits[4], hits[2], hits[0], hits[3], hits[1]}

	m1 := calc(t, hits)
	m2 := calc(t, shuffled)
	for _, a := range m1.Keys() {
		for _, b := range m1.Keys() {
			v1 := cell(t, m1, a, b)
			v2 := cell(t, m2, a, b)
			if math.IsNaN(v1) {
				assert.True(t, math.IsNaN(v2), "(%s, %s)", a, b)
			} else {
				assert.Equal(t, v1, v2, "(%s, %s)", a, b)
			}
		}
	}
}

func TestCalcSymmetric(t *testing.T) {
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 0.25),
		testHit("A", "X", "p", "2", 4),
		testHit("B", "X", "p", "2", 2),
		testHit("A", "Y", "q", "3", 1),
		testHit("B", "Y", "q", "3", 7),
	}
	m := calc(t, hits)
	assert.Equal(t, cell(t, m, "A", "B"), cell(t, m, "B", "A"))
}

func TestCalcDomainErrorSurfaces(t *testing.T) {
	hits := []model.Hit{
		testHit("A", "X", "p", "1", -3),
		testHit("B", "X", "p", "1", 1),
	}
	_, err := (&JPrimeCalculator{}).Calc(context.Background(), hits)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadWeight)
}

func TestCalcParallelMatchesSerial(t *testing.T) {
	var hits []model.Hit
	origins := []string{"A", "B", "C", "D", "E", "F"}
	for i, o := range origins {
		for j := 0; j < 4; j++ {
			hits = append(hits,
				testHit(o, "X", "p", string(rune('0'+(i+j)%5)), float64(j+1)),
				testHit(o, "Y", "q", string(rune('0'+(i*j)%3)), 0.5*float64(i+1)),
			)
		}
	}

	serial, err := (&JPrimeCalculator{Workers: 1}).Calc(context.Background(), hits)
	require.NoError(t, err)
	parallel, err := (&JPrimeCalculator{Workers: 8}).Calc(context.Background(), hits)
	require.NoError(t, err)

	for _, a := range serial.Keys() {
		for _, b := range serial.Keys() {
			v1 := cell(t, serial, a, b)
			v2 := cell(t, parallel, a, b)
			if math.IsNaN(v1) {
				assert.True(t, math.IsNaN(v2), "(%s, %s)", a, b)
			} else {
				assert.Equal(t, v1, v2, "(%s, %s)", a, b)
			}
		}
	}
}

func TestCalcProgress(t *testing.T) {
	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 1),
	}

	var mu sync.Mutex
	var calls, lastTotal int
	c := &JPrimeCalculator{Progress: func(done, total int) {
		mu.Lock()
		calls++
		lastTotal = total
		mu.Unlock()
	}}
	_, err := c.Calc(context.Background(), hits)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, lastTotal)
}

func TestCalcCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hits := []model.Hit{
		testHit("A", "X", "p", "1", 1),
		testHit("B", "X", "p", "1", 1),
	}
	_, err := (&JPrimeCalculator{Workers: 1}).Calc(ctx, hits)
	assert.ErrorIs(t, err, context.Canceled)
}
