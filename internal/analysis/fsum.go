package analysis

// fsum returns the sum of xs using Neumaier's compensated summation.
// The matrix averages many near-equal small terms, where naive summation
// drifts enough to reorder near-tied cells.
func fsum(xs []float64) float64 {
	var sum, comp float64
	for _, x := range xs {
		t := sum + x
		if abs(sum) >= abs(x) {
			comp += (sum - t) + x
		} else {
			comp += (x - t) + sum
		}
		sum = t
	}
	return sum + comp
}

// mean returns the arithmetic mean of xs. Callers guarantee xs is non-empty.
func mean(xs []float64) float64 {
	return fsum(xs) / float64(len(xs))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
