package pwl

import "math"

// FullFromHalf mirrors a half-curve fit across x = 0 into a full-domain
// surrogate for the activation itself (offset restored).
//
// With g(x) = act(x) - offset, g is odd, so a half segment y = m·x + c maps to
// y = m·x - c over the negated domain. FitHalf anchors the curve at the origin,
// which makes the first half segment's intercept exactly zero: its mirror image
// is the same line, the two innermost pieces merge, and x = 0 is not a
// breakpoint. A half curve with k interior breakpoints therefore yields a full
// curve with 2k. The outermost segments extend to ±infinity so the curve covers
// the full real line.
//
// Parameters:
//   - half: a half-curve family entry produced by FitHalf
//   - xs, ys: the node's full-domain dataset, signed pre-activations and their
//     true (unshifted) activations; used only to record the full curve's SSE
//   - kind: the activation whose symmetry drives the reflection
//
// Returns:
//   - the immutable full-domain Curve
func FullFromHalf(half Curve, xs, ys []float64, kind Kind) Curve {
	off := kind.Offset()
	k := half.K

	bps := make([]float64, 0, 2*k)
	for i := k - 1; i >= 0; i-- {
		bps = append(bps, -half.Breakpoints[i])
	}
	bps = append(bps, half.Breakpoints...)

	segs := make([]Segment, 0, 2*k+1)
	// Mirrored side, outermost segment first.
	for i := k; i >= 1; i-- {
		s := half.Segments[i]
		lo := -s.Hi
		if i == k {
			lo = math.Inf(-1)
		}
		segs = append(segs, Segment{Lo: lo, Hi: -s.Lo, Slope: s.Slope, Intercept: off - s.Intercept})
	}
	// Centre segment shared by both halves.
	c0 := half.Segments[0]
	lo, hi := -c0.Hi, c0.Hi
	if k == 0 {
		lo, hi = math.Inf(-1), math.Inf(1)
	}
	segs = append(segs, Segment{Lo: lo, Hi: hi, Slope: c0.Slope, Intercept: off + c0.Intercept})
	// Positive side.
	for i := 1; i <= k; i++ {
		s := half.Segments[i]
		hi := s.Hi
		if i == k {
			hi = math.Inf(1)
		}
		segs = append(segs, Segment{Lo: s.Lo, Hi: hi, Slope: s.Slope, Intercept: off + s.Intercept})
	}

	full := Curve{Breakpoints: bps, Segments: segs, K: 2 * k}
	full.SSE = full.sse(xs, ys)
	return full
}
