package analysis

import (
	"math"
	"testing"
)

func TestFsum(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{1.5}, 1.5},
		{"cancellation", []float64{1e16, 1, -1e16}, 1},
		{"alternating", []float64{1, 1e100, 1, -1e100}, 2},
		{"negatives", []float64{-0.1, -0.2, 0.3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fsum(tt.xs)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("fsum(%v) = %v, want %v", tt.xs, got, tt.want)
			}
		})
	}
}

func TestFsumBeatsNaiveSummation(t *testing.T) {
	// Many copies of 0.1 accumulate visible drift under naive summation.
	xs := make([]float64, 1_000_000)
	for i := range xs {
		xs[i] = 0.1
	}

	var naive float64
	for _, x := range xs {
		naive += x
	}

	const want = 100_000.0
	compensated := fsum(xs)
	if err := math.Abs(compensated - want); err > 1e-9 {
		t.Errorf("compensated sum off by %v", err)
	}
	if math.Abs(naive-want) < math.Abs(compensated-want) {
		t.Error("naive summation unexpectedly at least as accurate")
	}
}

func TestMean(t *testing.T) {
	got := mean([]float64{0.5, 0.3})
	if math.Abs(got-0.4) > 1e-15 {
		t.Errorf("mean = %v, want 0.4", got)
	}
}
