package pwl

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signedData draws pre-activations on both sides of zero and returns them with
// their true activations.
func signedData(kind Kind, n int, seed int64) ([]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = rng.Float64()*12 - 6
		ys[i] = kind.Apply(xs[i])
	}
	return xs, ys
}

func fullFamilyFor(t *testing.T, kind Kind, noBP int) Family {
	t.Helper()
	zs, _ := signedData(kind, 500, 11)
	fam := fitNode(zs, kind, Options{Spacing: 1, SampleSize: 300}, noBP)
	require.NotEmpty(t, fam)
	return fam
}

func TestFullFromHalfPointSymmetry(t *testing.T) {
	for _, kind := range []Kind{Sigmoid, Hyperbolic} {
		t.Run(kind.String(), func(t *testing.T) {
			fam := fullFamilyFor(t, kind, 3)
			off := kind.Offset()
			for _, c := range fam {
				for x := -5.5; x <= 5.5; x += 0.37 {
					assert.InDelta(t, 2*off, c.Evaluate(x)+c.Evaluate(-x), 1e-9,
						"k=%d curve should be point-symmetric about (0, %v)", c.K, off)
				}
			}
		})
	}
}

func TestFullFromHalfShape(t *testing.T) {
	fam := fullFamilyFor(t, Sigmoid, 3)
	for i, c := range fam {
		assert.Equal(t, 2*(i+1), c.K, "mirroring must double the breakpoint count")
		require.Len(t, c.Segments, c.K+1)
		for _, bp := range c.Breakpoints {
			assert.NotZero(t, bp, "x = 0 is shared between the halves, not a breakpoint")
		}
		for j := 1; j < len(c.Breakpoints); j++ {
			assert.Greater(t, c.Breakpoints[j], c.Breakpoints[j-1])
		}
		for j := 1; j < len(c.Segments); j++ {
			assert.Equal(t, c.Segments[j-1].Hi, c.Segments[j].Lo)
		}
		assert.True(t, math.IsInf(c.Segments[0].Lo, -1), "leftmost segment covers the negative tail")
		assert.True(t, math.IsInf(c.Segments[len(c.Segments)-1].Hi, 1), "rightmost segment covers the positive tail")
	}
}

// Mirrored curves inherit the half fit's monotonic refinement: richer entries
// fit the full dataset at least as well.
func TestFullFromHalfMonotonicSSE(t *testing.T) {
	for _, kind := range []Kind{Sigmoid, Hyperbolic} {
		t.Run(kind.String(), func(t *testing.T) {
			fam := fullFamilyFor(t, kind, 3)
			for i := 1; i < len(fam); i++ {
				t.Logf("%s K=%d SSE=%e", kind, fam[i].K, fam[i].SSE)
				assert.LessOrEqual(t, fam[i].SSE, fam[i-1].SSE+1e-12)
			}
		})
	}
}

func TestFullFromHalfDegenerate(t *testing.T) {
	// A zero-breakpoint half curve mirrors to a single unbounded segment.
	half := FitHalf([]float64{0, 2}, []float64{0, Sigmoid.Apply(2) - 0.5}, 1, 1)
	require.Len(t, half, 1)
	full := FullFromHalf(half[0], []float64{-1, 1}, []float64{Sigmoid.Apply(-1), Sigmoid.Apply(1)}, Sigmoid)
	assert.Equal(t, 0, full.K)
	require.Len(t, full.Segments, 1)
	assert.True(t, math.IsInf(full.Segments[0].Lo, -1))
	assert.True(t, math.IsInf(full.Segments[0].Hi, 1))
	assert.InDelta(t, 0.5, full.Evaluate(0), 1e-12)
}
