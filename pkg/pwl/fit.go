package pwl

import (
	"sort"

	"k8s.io/klog/v2"
)

// Family is the ladder of approximations for one node, ordered by breakpoint
// count. Entry i of a half-curve family has i+1 interior breakpoints;
// mirroring with FullFromHalf doubles that. A family may be shorter than
// requested when the spacing constraint runs out of admissible locations, and
// degenerates to a single zero-breakpoint entry when the data cannot support
// any interior breakpoint at all.
type Family []Curve

// Richest returns the family entry with the most breakpoints.
func (f Family) Richest() Curve {
	return f[len(f)-1]
}

// Level returns the family entry with exactly k interior breakpoints.
func (f Family) Level(k int) (Curve, bool) {
	for _, c := range f {
		if c.K == k {
			return c, true
		}
	}
	return Curve{}, false
}

// FitHalf builds piecewise-linear approximations of one node's half curve at
// every interior breakpoint count from 1 up to noBP.
//
// xs must be sorted ascending, non-negative and zero-anchored; ys holds the
// recentred activation values act(x) - offset, so the curve passes through the
// origin exactly. Each family entry refines the one before it: the next
// breakpoint is placed at the sample with the largest absolute residual
// against the current approximation, skipping candidates closer than spacing
// (an index distance) to any existing knot; ties go to the leftmost candidate,
// which makes the fit deterministic. Segments are chords through the on-curve
// knot points, so every approximation is exact at its knots and contiguity
// holds by construction.
//
// When the spacing constraint leaves no admissible candidate before noBP is
// reached the family stops short; callers tolerate the shorter family. Fewer
// than two distinct x values degenerate to a single flat or linear segment.
func FitHalf(xs, ys []float64, spacing, noBP int) Family {
	xs, ys = dedupe(xs, ys)
	n := len(xs)
	if n < 2 {
		return Family{degenerate(xs, ys)}
	}

	knots := []int{0, n - 1}
	fit := chordFit(xs, ys, knots)
	family := make(Family, 0, noBP)
	for k := 1; k <= noBP; k++ {
		idx, ok := nextKnot(xs, ys, fit, knots, spacing)
		if !ok {
			klog.Warningf("pwl: spacing %d over %d samples admits only %d of %d requested breakpoints", spacing, n, k-1, noBP)
			break
		}
		knots = append(knots, idx)
		sort.Ints(knots)
		fit = chordFit(xs, ys, knots)
		family = append(family, fit)
	}
	if len(family) == 0 {
		family = append(family, fit)
	}
	return family
}

// nextKnot finds the admissible sample index with the largest absolute residual
// against the current fit. A candidate is admissible when it is at least
// spacing indices away from every existing knot. Ties keep the lowest index.
func nextKnot(xs, ys []float64, fit Curve, knots []int, spacing int) (int, bool) {
	best, bestDev := -1, -1.0
	for i := 1; i < len(xs)-1; i++ {
		if !admissible(i, knots, spacing) {
			continue
		}
		dev := fit.Evaluate(xs[i]) - ys[i]
		if dev < 0 {
			dev = -dev
		}
		if dev > bestDev {
			best, bestDev = i, dev
		}
	}
	return best, best >= 0
}

func admissible(i int, knots []int, spacing int) bool {
	for _, t := range knots {
		d := i - t
		if d < 0 {
			d = -d
		}
		if d < spacing {
			return false
		}
	}
	return true
}

// chordFit builds the curve whose segments are chords between consecutive
// knots, evaluated on the sample they span.
func chordFit(xs, ys []float64, knots []int) Curve {
	segs := make([]Segment, 0, len(knots)-1)
	bps := make([]float64, 0, len(knots)-2)
	for i := 0; i+1 < len(knots); i++ {
		a, b := knots[i], knots[i+1]
		slope := (ys[b] - ys[a]) / (xs[b] - xs[a])
		segs = append(segs, Segment{
			Lo:        xs[a],
			Hi:        xs[b],
			Slope:     slope,
			Intercept: ys[a] - slope*xs[a],
		})
		if i+2 < len(knots) {
			bps = append(bps, xs[b])
		}
	}
	c := Curve{Breakpoints: bps, Segments: segs, K: len(bps)}
	c.SSE = c.sse(xs, ys)
	return c
}

// dedupe drops repeated x values, keeping the first occurrence. y is a function
// of x here, so nothing is lost.
func dedupe(xs, ys []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i := range xs {
		if i > 0 && xs[i] == xs[i-1] {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}

func degenerate(xs, ys []float64) Curve {
	x, y := 0.0, 0.0
	if len(xs) == 1 {
		x, y = xs[0], ys[0]
	}
	return Curve{
		Segments: []Segment{{Lo: x, Hi: x, Slope: 0, Intercept: y}},
	}
}
