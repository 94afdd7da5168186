package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/openssl-sg-insights/mandos/internal/model"
)

// ErrBadWeight indicates a hit confidence outside the recognized domain.
// Check with errors.Is; the wrapped message carries the offending value.
var ErrBadWeight = errors.New("confidence weight out of domain")

// elle maps a raw hit confidence onto the weight scale used by the
// concordance formulas. The mapping is monotonic and elle(0) == 0, so absent
// evidence contributes nothing. Negative or non-finite confidences are a
// data-quality defect, not something to coerce.
func elle(c float64) (float64, error) {
	if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
		return 0, fmt.Errorf("%w: %v", ErrBadWeight, c)
	}
	return c, nil
}

// wedge is the weighted-AND term: the geometric mean of the two weights.
// Zero if either side is zero, symmetric, and never above the arithmetic mean.
func wedge(la, lb float64) float64 {
	return math.Sqrt(la * lb)
}

// vee is the weighted-OR normalizer. For la == lb it equals 2*la, which pins
// the ratio wedge/vee at 0.5 for equal-confidence pairs; the geometric mean
// never exceeds half the sum, so 0.5 is the most a single pair contributes.
func vee(la, lb float64) float64 {
	return la + lb
}

// pairScore returns wedge/vee for one matched pair. ok is false when both
// weights are zero: such a pair carries no evidence and is excluded rather
// than divided. Any other zero denominator is impossible for weights in the
// domain and is surfaced as a defect.
func pairScore(ca, cb float64) (score float64, ok bool, err error) {
	la, err := elle(ca)
	if err != nil {
		return 0, false, err
	}
	lb, err := elle(cb)
	if err != nil {
		return 0, false, err
	}
	if la == 0 && lb == 0 {
		return 0, false, nil
	}
	v := vee(la, lb)
	if v == 0 {
		return 0, false, fmt.Errorf("zero normalizer for weights (%v, %v)", ca, cb)
	}
	return wedge(la, lb) / v, true, nil
}

// claimKey identifies the underlying claim a hit asserts. Two hits from
// different compounds that agree on predicate and object are matched.
type claimKey struct {
	predicate string
	objectID  string
}

// pairWeights extracts the matched-pair confidence weights between two hit
// collections restricted to one data source. Matching is many-to-many: a hit
// participates in one pair per counterpart asserting the same claim. An empty
// result means no overlap, which callers treat distinctly from a zero score.
func pairWeights(hitsA, hitsB []model.Hit) [][2]float64 {
	byClaim := make(map[claimKey][]model.Hit, len(hitsB))
	for _, h := range hitsB {
		k := claimKey{h.Predicate, h.ObjectID}
		byClaim[k] = append(byClaim[k], h)
	}

	var pairs [][2]float64
	for _, a := range hitsA {
		for _, b := range byClaim[claimKey{a.Predicate, a.ObjectID}] {
			pairs = append(pairs, [2]float64{a.Weight, b.Weight})
		}
	}
	return pairs
}
