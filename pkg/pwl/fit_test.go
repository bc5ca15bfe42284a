package pwl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halfData samples the recentred activation on a uniform grid over [0, max].
func halfData(kind Kind, max float64, n int) ([]float64, []float64) {
	xs := make([]float64, n)
	ys := make([]float64, n)
	off := kind.Offset()
	for i := range xs {
		xs[i] = max * float64(i) / float64(n-1)
		ys[i] = kind.Apply(xs[i]) - off
	}
	return xs, ys
}

func TestFitHalfMonotonicRefinement(t *testing.T) {
	for _, kind := range []Kind{Sigmoid, Hyperbolic} {
		t.Run(kind.String(), func(t *testing.T) {
			xs, ys := halfData(kind, 8, 201)
			family := FitHalf(xs, ys, 1, 4)
			require.Len(t, family, 4)
			for i, c := range family {
				assert.Equal(t, i+1, c.K)
				t.Logf("%s k=%d SSE=%e", kind, c.K, c.SSE)
				if i > 0 {
					assert.LessOrEqual(t, c.SSE, family[i-1].SSE+1e-12,
						"refining from %d to %d breakpoints must not increase error", i, i+1)
				}
			}
		})
	}
}

// Chord fitting makes every approximation exact at its knots.
func TestFitHalfExactAtBreakpoints(t *testing.T) {
	xs, ys := halfData(Sigmoid, 6, 121)
	family := FitHalf(xs, ys, 1, 3)
	for _, c := range family {
		for _, bp := range c.Breakpoints {
			assert.InDelta(t, Sigmoid.Apply(bp)-0.5, c.Evaluate(bp), 1e-12)
		}
		assert.InDelta(t, ys[0], c.Evaluate(xs[0]), 1e-12)
	}
}

func TestFitHalfSpacing(t *testing.T) {
	// Unit-spaced samples make the index distance equal the coordinate
	// distance, so the spacing constraint is directly visible on the
	// breakpoints.
	xs, ys := halfData(Sigmoid, 20, 21)
	const spacing = 5
	family := FitHalf(xs, ys, spacing, 3)
	for _, c := range family {
		knots := append([]float64{xs[0]}, c.Breakpoints...)
		knots = append(knots, xs[len(xs)-1])
		for i := 1; i < len(knots); i++ {
			assert.GreaterOrEqual(t, knots[i]-knots[i-1], float64(spacing),
				"breakpoints of the k=%d curve violate the spacing constraint: %v", c.K, c.Breakpoints)
		}
	}
}

func TestFitHalfStopsShort(t *testing.T) {
	// Six samples with spacing 3 admit no interior breakpoint at all: the
	// family degrades to the baseline chord instead of failing.
	xs, ys := halfData(Sigmoid, 5, 6)
	family := FitHalf(xs, ys, 3, 3)
	require.Len(t, family, 1)
	assert.Equal(t, 0, family[0].K)
	assert.Empty(t, family[0].Breakpoints)
}

func TestFitHalfTieBreaksLeftmost(t *testing.T) {
	// The baseline chord of this zig-zag is y = 0, leaving equal residuals
	// at x = 1 and x = 3. The leftmost must win.
	xs := []float64{0, 1, 2, 3, 4}
	ys := []float64{0, 1, 0, 1, 0}
	family := FitHalf(xs, ys, 1, 1)
	require.Len(t, family, 1)
	require.Len(t, family[0].Breakpoints, 1)
	assert.Equal(t, 1.0, family[0].Breakpoints[0])
}

func TestFitHalfDegenerate(t *testing.T) {
	t.Run("SingleDistinctX", func(t *testing.T) {
		family := FitHalf([]float64{0, 0, 0}, []float64{0, 0, 0}, 1, 2)
		require.Len(t, family, 1)
		assert.Equal(t, 0, family[0].K)
		assert.Equal(t, 0.0, family[0].Evaluate(3))
	})
	t.Run("TwoPoints", func(t *testing.T) {
		family := FitHalf([]float64{0, 2}, []float64{0, 1}, 1, 2)
		require.Len(t, family, 1)
		assert.Equal(t, 0, family[0].K)
		assert.InDelta(t, 0.5, family[0].Evaluate(1), 1e-12)
	})
}

func TestFitHalfDeterministic(t *testing.T) {
	xs, ys := halfData(Hyperbolic, 7, 151)
	a := FitHalf(xs, ys, 2, 3)
	b := FitHalf(xs, ys, 2, 3)
	assert.Equal(t, a, b, "identical inputs must reproduce identical families")
}

func TestCurveContiguity(t *testing.T) {
	xs, ys := halfData(Sigmoid, 8, 101)
	for _, c := range FitHalf(xs, ys, 1, 3) {
		require.Len(t, c.Segments, c.K+1)
		for i := 1; i < len(c.Segments); i++ {
			assert.Equal(t, c.Segments[i-1].Hi, c.Segments[i].Lo,
				"segments must be contiguous")
		}
		for i := 1; i < len(c.Breakpoints); i++ {
			assert.Greater(t, c.Breakpoints[i], c.Breakpoints[i-1],
				"breakpoints must be strictly increasing")
		}
	}
}
