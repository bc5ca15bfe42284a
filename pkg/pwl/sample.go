package pwl

import "math"

// Subsample thins a sorted sequence down to size while preserving order and the
// value range: the first and last elements are always retained and interior
// picks are spread evenly across the index range. When xs already fits (or size
// is too small to span both endpoints) xs is returned unchanged: running the
// breakpoint search on the full data is the soft fallback, not an error.
//
// Parameters:
//   - xs: sorted values to thin out
//   - size: target sample size
//
// Returns:
//   - the subsequence of length size, or xs itself when len(xs) <= size or size < 2
func Subsample(xs []float64, size int) []float64 {
	n := len(xs)
	if n <= size || size < 2 {
		return xs
	}
	out := make([]float64, size)
	for i := 0; i < size; i++ {
		j := int(math.Round(float64(i) * float64(n-1) / float64(size-1)))
		out[i] = xs[j]
	}
	return out
}
