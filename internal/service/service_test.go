package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openssl-sg-insights/mandos/internal/analysis"
	"github.com/openssl-sg-insights/mandos/internal/model"
)

// stubSearch returns canned hits per lookup, or an error for lookups
// listed in fail.
type stubSearch struct {
	key  string
	hits map[string][]model.Hit
	fail map[string]error
}

func (s *stubSearch) Key() string        { return s.key }
func (s *stubSearch) DataSource() string { return "Stub :: test" }

func (s *stubSearch) Find(_ context.Context, lookup string) ([]model.Hit, error) {
	if err, ok := s.fail[lookup]; ok {
		return nil, err
	}
	return s.hits[lookup], nil
}

func stubHit(origin string) model.Hit {
	return model.Hit{
		OriginID:   origin,
		Predicate:  "atc:level3",
		ObjectID:   "N05C",
		DataSource: "Stub :: test",
		SearchKey:  "stub",
		Weight:     1,
	}
}

func TestSearchRunStampsRunID(t *testing.T) {
	svc := NewSearchService(nil, nil, nil)
	src := &stubSearch{
		key: "stub",
		hits: map[string][]model.Hit{
			"AAA": {stubHit("AAA")},
			"BBB": {stubHit("BBB")},
		},
	}

	result, err := svc.Run(context.Background(), src, []string{"AAA", "BBB"}, SearchOptions{})
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	require.NoError(t, err, "run ID should be a valid UUID")

	require.Len(t, result.Hits, 2)
	for _, h := range result.Hits {
		assert.Equal(t, result.RunID, h.RunID)
	}
}

func TestSearchRunAbortsOnError(t *testing.T) {
	svc := NewSearchService(nil, nil, nil)
	src := &stubSearch{
		key:  "stub",
		hits: map[string][]model.Hit{"AAA": {stubHit("AAA")}},
		fail: map[string]error{"BAD": errors.New("no such compound")},
	}

	_, err := svc.Run(context.Background(), src, []string{"AAA", "BAD"}, SearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD")
}

func TestSearchRunContinuesOnError(t *testing.T) {
	svc := NewSearchService(nil, nil, nil)
	src := &stubSearch{
		key: "stub",
		hits: map[string][]model.Hit{
			"AAA": {stubHit("AAA")},
			"CCC": {stubHit("CCC")},
		},
		fail: map[string]error{"BAD": errors.New("no such compound")},
	}

	result, err := svc.Run(context.Background(), src, []string{"AAA", "BAD", "CCC"}, SearchOptions{Continue: true})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 2)
	assert.Equal(t, []string{"BAD"}, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no such compound")
}

func TestConcordCalcWithFiltration(t *testing.T) {
	svc := NewConcordService(nil, nil, nil)

	hits := []model.Hit{
		stubHit("AAA"),
		stubHit("BBB"),
		{OriginID: "AAA", Predicate: "noise", ObjectID: "x", DataSource: "Noise :: junk", Weight: 1},
	}

	rules, err := analysis.ParseTOMLRules([]byte(`
[[rules]]
action = "drop"
data_source = "Noise :: junk"
`))
	require.NoError(t, err)

	m, err := svc.Calc(context.Background(), hits, ConcordOptions{Rules: rules})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAA", "BBB"}, m.Keys())
	v, ok := m.Get("AAA", "BBB")
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-15)
}

func TestConcordCalcProgress(t *testing.T) {
	svc := NewConcordService(nil, nil, nil)

	hits := []model.Hit{stubHit("AAA"), stubHit("BBB")}

	var calls int
	var lastDone, lastTotal int
	m, err := svc.Calc(context.Background(), hits, ConcordOptions{
		Workers: 1,
		Progress: func(done, total int) {
			calls++
			lastDone, lastTotal = done, total
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, lastDone)
	assert.Equal(t, 4, lastTotal)
}

func TestConcordLoadHitsFile(t *testing.T) {
	svc := NewConcordService(nil, nil, nil)

	path := t.TempDir() + "/hits.tsv"
	want := []model.Hit{stubHit("AAA")}
	require.NoError(t, model.WriteHitsFile(path, want))

	got, err := svc.LoadHitsFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConcordLoadHitsNoStore(t *testing.T) {
	svc := NewConcordService(nil, nil, nil)

	_, err := svc.LoadHits(context.Background())
	require.Error(t, err)
}

func TestConcordCalcNoSharedSource(t *testing.T) {
	svc := NewConcordService(nil, nil, nil)

	hits := []model.Hit{
		stubHit("AAA"),
		{OriginID: "BBB", Predicate: "p", ObjectID: "o", DataSource: "Other :: source", Weight: 1},
	}

	m, err := svc.Calc(context.Background(), hits, ConcordOptions{})
	require.NoError(t, err)
	v, ok := m.Get("AAA", "BBB")
	require.True(t, ok)
	assert.True(t, math.IsNaN(v))
}
