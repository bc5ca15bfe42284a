package pwl

import "sort"

// Segment is one linear piece of a piecewise-linear curve: y = Slope·x + Intercept
// over the domain [Lo, Hi). The bounds may be infinite on full curves.
type Segment struct {
	Lo        float64
	Hi        float64
	Slope     float64
	Intercept float64
}

// Curve is an ordered, contiguous sequence of segments: the upper bound of each
// segment is the lower bound of the next, with no gaps or overlaps. Half curves
// built by FitHalf span [0, xmax]; full curves built by FullFromHalf span the
// whole real line. A Curve is never mutated after construction; refining the
// breakpoint count always produces a new Curve.
type Curve struct {
	// Breakpoints are the interior knots, strictly increasing. Domain
	// endpoints are not breakpoints.
	Breakpoints []float64
	// Segments has exactly len(Breakpoints)+1 entries.
	Segments []Segment
	// K is the number of interior breakpoints.
	K int
	// SSE is the sum of squared deviations from the true curve over the
	// dataset the curve was fitted or mirrored against.
	SSE float64
}

// Evaluate returns the curve's value at x. Inputs beyond a half curve's domain
// follow the outermost segment's line, which is also how full curves cover the
// unbounded tails.
func (c Curve) Evaluate(x float64) float64 {
	i := sort.Search(len(c.Breakpoints), func(i int) bool { return c.Breakpoints[i] > x })
	s := c.Segments[i]
	return s.Slope*x + s.Intercept
}

// sse accumulates the squared deviation of the curve from ys over xs.
func (c Curve) sse(xs, ys []float64) float64 {
	total := 0.0
	for i, x := range xs {
		d := c.Evaluate(x) - ys[i]
		total += d * d
	}
	return total
}
